package db

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var database *sql.DB

// InitDB initializes the SQLite database
func InitDB(path string) error {
	var err error
	database, err = sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	query := `
    CREATE TABLE IF NOT EXISTS datasets (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        name TEXT NOT NULL UNIQUE,
        source_url TEXT,
        sha256 TEXT,
        rows INTEGER DEFAULT 0,
        columns INTEGER DEFAULT 0,
        downloaded_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    CREATE TABLE IF NOT EXISTS training_runs (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        model_name TEXT NOT NULL,
        model_type TEXT NOT NULL,
        hyperparameters TEXT,
        accuracy REAL,
        precision REAL,
        recall REAL,
        f1 REAL,
        data_points INTEGER DEFAULT 0,
        artifact_path TEXT,
        trained_at DATETIME NOT NULL
    );
    CREATE TABLE IF NOT EXISTS predictions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        model_name TEXT NOT NULL,
        input_hash TEXT NOT NULL,
        label INTEGER NOT NULL,
        class TEXT,
        confidence REAL,
        source TEXT,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    CREATE INDEX IF NOT EXISTS idx_predictions_model ON predictions(model_name, created_at);
    `

	_, err = database.Exec(query)
	return err
}

// Close releases the database handle.
func Close() error {
	if database == nil {
		return nil
	}
	err := database.Close()
	database = nil
	return err
}

// DatasetRecord is the provenance row for a downloaded dataset.
type DatasetRecord struct {
	Name         string    `json:"name"`
	SourceURL    string    `json:"source_url"`
	SHA256       string    `json:"sha256"`
	Rows         int       `json:"rows"`
	Columns      int       `json:"columns"`
	DownloadedAt time.Time `json:"downloaded_at"`
}

// SaveDataset upserts dataset provenance.
func SaveDataset(record DatasetRecord) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	if record.Name == "" {
		return errors.New("dataset name required")
	}
	if record.DownloadedAt.IsZero() {
		record.DownloadedAt = time.Now().UTC()
	}
	_, err := database.Exec(`
        INSERT OR REPLACE INTO datasets (name, source_url, sha256, rows, columns, downloaded_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		record.Name, record.SourceURL, record.SHA256, record.Rows, record.Columns, record.DownloadedAt)
	return err
}

// ListDatasets returns all recorded datasets, newest first.
func ListDatasets() ([]DatasetRecord, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}
	rows, err := database.Query(`
        SELECT name, source_url, sha256, rows, columns, downloaded_at
        FROM datasets
        ORDER BY downloaded_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]DatasetRecord, 0)
	for rows.Next() {
		var r DatasetRecord
		if err := rows.Scan(&r.Name, &r.SourceURL, &r.SHA256, &r.Rows, &r.Columns, &r.DownloadedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// TrainingRun is one recorded training job.
type TrainingRun struct {
	ModelName       string    `json:"model_name"`
	ModelType       string    `json:"model_type"`
	Hyperparameters string    `json:"hyperparameters"`
	Accuracy        float64   `json:"accuracy"`
	Precision       float64   `json:"precision"`
	Recall          float64   `json:"recall"`
	F1              float64   `json:"f1"`
	DataPoints      int       `json:"data_points"`
	ArtifactPath    string    `json:"artifact_path"`
	TrainedAt       time.Time `json:"trained_at"`
}

// SaveTrainingRun appends a training run record.
func SaveTrainingRun(run TrainingRun) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	if run.ModelName == "" {
		return errors.New("model name required")
	}
	if run.TrainedAt.IsZero() {
		run.TrainedAt = time.Now().UTC()
	}
	_, err := database.Exec(`
        INSERT INTO training_runs (
            model_name, model_type, hyperparameters,
            accuracy, precision, recall, f1,
            data_points, artifact_path, trained_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ModelName, run.ModelType, run.Hyperparameters,
		run.Accuracy, run.Precision, run.Recall, run.F1,
		run.DataPoints, run.ArtifactPath, run.TrainedAt)
	return err
}

// ListTrainingRuns returns up to limit runs, newest first.
func ListTrainingRuns(limit int) ([]TrainingRun, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := database.Query(`
        SELECT model_name, model_type, hyperparameters,
               accuracy, precision, recall, f1,
               data_points, artifact_path, trained_at
        FROM training_runs
        ORDER BY trained_at DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]TrainingRun, 0)
	for rows.Next() {
		var run TrainingRun
		if err := rows.Scan(&run.ModelName, &run.ModelType, &run.Hyperparameters,
			&run.Accuracy, &run.Precision, &run.Recall, &run.F1,
			&run.DataPoints, &run.ArtifactPath, &run.TrainedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Prediction is one served inference result.
type Prediction struct {
	ModelName  string    `json:"model_name"`
	InputHash  string    `json:"input_hash"`
	Label      int       `json:"label"`
	Class      string    `json:"class"`
	Confidence float64   `json:"confidence"`
	Source     string    `json:"source"`
	CreatedAt  time.Time `json:"created_at"`
}

// SavePrediction records one served prediction.
func SavePrediction(p Prediction) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	if p.ModelName == "" || p.InputHash == "" {
		return errors.New("model name and input hash required")
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := database.Exec(`
        INSERT INTO predictions (model_name, input_hash, label, class, confidence, source, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ModelName, p.InputHash, p.Label, p.Class, p.Confidence, p.Source, p.CreatedAt)
	return err
}

// RecentPredictions returns up to limit predictions, newest first.
func RecentPredictions(limit int) ([]Prediction, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := database.Query(`
        SELECT model_name, input_hash, label, class, confidence, source, created_at
        FROM predictions
        ORDER BY created_at DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	predictions := make([]Prediction, 0)
	for rows.Next() {
		var p Prediction
		if err := rows.Scan(&p.ModelName, &p.InputHash, &p.Label, &p.Class, &p.Confidence, &p.Source, &p.CreatedAt); err != nil {
			return nil, err
		}
		predictions = append(predictions, p)
	}
	return predictions, rows.Err()
}
