package dataset

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// LabelEncoder maps category strings to stable class indices.
type LabelEncoder struct {
	Classes []string       `json:"classes"`
	index   map[string]int `json:"-"`
}

// Fit assigns indices to the sorted distinct values, so the mapping does not
// depend on row order.
func (e *LabelEncoder) Fit(values []string) {
	seen := make(map[string]struct{})
	for _, v := range values {
		seen[strings.TrimSpace(v)] = struct{}{}
	}
	e.Classes = make([]string, 0, len(seen))
	for v := range seen {
		e.Classes = append(e.Classes, v)
	}
	sort.Strings(e.Classes)
	e.buildIndex()
}

// Transform converts values to class indices.
func (e *LabelEncoder) Transform(values []string) ([]int, error) {
	if e.index == nil {
		e.buildIndex()
	}
	labels := make([]int, len(values))
	for i, v := range values {
		idx, ok := e.index[strings.TrimSpace(v)]
		if !ok {
			return nil, fmt.Errorf("unknown class %q", v)
		}
		labels[i] = idx
	}
	return labels, nil
}

// Inverse returns the class name for a label.
func (e *LabelEncoder) Inverse(label int) (string, error) {
	if label < 0 || label >= len(e.Classes) {
		return "", fmt.Errorf("label %d out of range", label)
	}
	return e.Classes[label], nil
}

func (e *LabelEncoder) buildIndex() {
	e.index = make(map[string]int, len(e.Classes))
	for i, c := range e.Classes {
		e.index[c] = i
	}
}

// Matrix is an encoded dataset: a dense feature matrix, aligned labels, the
// generated feature names and the target encoder.
type Matrix struct {
	Features     [][]float64
	Labels       []int
	FeatureNames []string
	Target       *LabelEncoder
}

// BuildMatrix encodes a table into a numeric feature matrix. Columns listed in
// categorical are one-hot encoded, every other non-target column is parsed as
// a float. Feature ordering follows the table's column order, so matrices
// built from the same header line up.
func BuildMatrix(t *Table, target string, categorical []string) (*Matrix, error) {
	if t.Len() == 0 {
		return nil, errors.New("table is empty")
	}
	targetIdx := t.ColumnIndex(target)
	if targetIdx < 0 {
		return nil, fmt.Errorf("target column %q not found", target)
	}

	catSet := make(map[string]bool, len(categorical))
	for _, c := range categorical {
		if t.ColumnIndex(c) < 0 {
			return nil, fmt.Errorf("categorical column %q not found", c)
		}
		catSet[c] = true
	}

	// One encoder per categorical column, fit over the whole table.
	encoders := make(map[string]*LabelEncoder)
	for name := range catSet {
		values, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		enc := &LabelEncoder{}
		enc.Fit(values)
		encoders[name] = enc
	}

	var names []string
	for i, col := range t.Columns {
		if i == targetIdx {
			continue
		}
		if catSet[col] {
			for _, class := range encoders[col].Classes {
				names = append(names, col+"="+class)
			}
			continue
		}
		names = append(names, col)
	}

	features := make([][]float64, t.Len())
	for r, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return nil, fmt.Errorf("row %d has %d cells, want %d", r, len(row), len(t.Columns))
		}
		vector := make([]float64, 0, len(names))
		for i, col := range t.Columns {
			if i == targetIdx {
				continue
			}
			if catSet[col] {
				enc := encoders[col]
				hot := make([]float64, len(enc.Classes))
				idx, err := enc.Transform([]string{row[i]})
				if err != nil {
					return nil, fmt.Errorf("row %d: %w", r, err)
				}
				hot[idx[0]] = 1
				vector = append(vector, hot...)
				continue
			}
			value, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", r, col, err)
			}
			vector = append(vector, value)
		}
		features[r] = vector
	}

	targetValues, err := t.Column(target)
	if err != nil {
		return nil, err
	}
	targetEnc := &LabelEncoder{}
	targetEnc.Fit(targetValues)
	labels, err := targetEnc.Transform(targetValues)
	if err != nil {
		return nil, err
	}

	return &Matrix{
		Features:     features,
		Labels:       labels,
		FeatureNames: names,
		Target:       targetEnc,
	}, nil
}
