package db

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var database *sql.DB

// InitDB opens the SQLite database and creates the audit tables. The tables
// are append-only operational records; sessions themselves are never
// persisted.
func InitDB(path string) error {
	var err error
	database, err = sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	query := `
    CREATE TABLE IF NOT EXISTS training_log (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        model_name VARCHAR(50),
        accuracy REAL,
        data_points INTEGER,
        trained_at DATETIME
    );
    CREATE TABLE IF NOT EXISTS predictions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        session_id TEXT NOT NULL,
        predicted_label INTEGER,
        probability REAL,
        bmi REAL,
        timestamp DATETIME
    );`

	_, err = database.Exec(query)
	return err
}

// Close closes the database handle.
func Close() error {
	if database == nil {
		return nil
	}
	err := database.Close()
	database = nil
	return err
}

// SaveTrainingRun records one (re)training outcome.
func SaveTrainingRun(modelName string, accuracy float64, dataPoints int) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	_, err := database.Exec(`
        INSERT INTO training_log (model_name, accuracy, data_points, trained_at)
        VALUES (?, ?, ?, ?)
    `, modelName, accuracy, dataPoints, time.Now().UTC())
	return err
}

// SavePrediction records one scoring event.
func SavePrediction(sessionID string, label int, probability, bmi float64) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	if sessionID == "" {
		return errors.New("session id required")
	}
	_, err := database.Exec(`
        INSERT INTO predictions (session_id, predicted_label, probability, bmi, timestamp)
        VALUES (?, ?, ?, ?, ?)
    `, sessionID, label, probability, bmi, time.Now().UTC())
	return err
}

// TrainingLog is one row of the training audit table.
type TrainingLog struct {
	ModelName  string    `json:"model_name"`
	Accuracy   float64   `json:"accuracy"`
	DataPoints int       `json:"data_points"`
	TrainedAt  time.Time `json:"trained_at"`
}

// LoadTrainingLog returns the training history, newest first.
func LoadTrainingLog() ([]TrainingLog, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}
	rows, err := database.Query(`
        SELECT model_name, accuracy, data_points, trained_at
        FROM training_log
        ORDER BY trained_at DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]TrainingLog, 0)
	for rows.Next() {
		var log TrainingLog
		if err := rows.Scan(&log.ModelName, &log.Accuracy, &log.DataPoints, &log.TrainedAt); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}
