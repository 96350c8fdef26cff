package ml

import (
	"encoding/json"
	"errors"
	"os"
)

// Scaler rescales features into [0, 1] using per-feature min/max stats
// computed on the training set. The stats persist next to the model artifact
// so serving applies the same transform.
type Scaler struct {
	Min []float64 `json:"min"`
	Max []float64 `json:"max"`
}

// Fit computes per-feature bounds.
func (s *Scaler) Fit(features [][]float64) error {
	if len(features) == 0 {
		return errors.New("features is empty")
	}
	dim := len(features[0])
	s.Min = make([]float64, dim)
	s.Max = make([]float64, dim)
	copy(s.Min, features[0])
	copy(s.Max, features[0])

	for _, row := range features[1:] {
		if len(row) != dim {
			return errors.New("inconsistent feature dimensions")
		}
		for d, v := range row {
			if v < s.Min[d] {
				s.Min[d] = v
			}
			if v > s.Max[d] {
				s.Max[d] = v
			}
		}
	}
	return nil
}

// Transform rescales a batch. Constant features map to 0.
func (s *Scaler) Transform(features [][]float64) ([][]float64, error) {
	out := make([][]float64, len(features))
	for i, row := range features {
		scaled, err := s.TransformVector(row)
		if err != nil {
			return nil, err
		}
		out[i] = scaled
	}
	return out, nil
}

// TransformVector rescales a single feature vector.
func (s *Scaler) TransformVector(row []float64) ([]float64, error) {
	if len(s.Min) == 0 {
		return nil, errors.New("scaler not fitted")
	}
	if len(row) != len(s.Min) {
		return nil, errors.New("feature dimension mismatch")
	}
	scaled := make([]float64, len(row))
	for d, v := range row {
		span := s.Max[d] - s.Min[d]
		if span == 0 {
			scaled[d] = 0
			continue
		}
		scaled[d] = (v - s.Min[d]) / span
	}
	return scaled, nil
}

func (s *Scaler) Save(path string) error {
	if len(s.Min) == 0 {
		return errors.New("scaler not fitted")
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (s *Scaler) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, s)
}
