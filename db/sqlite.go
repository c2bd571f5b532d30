package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"stresscheck/ml"
	"stresscheck/sensor"
)

const schema = `
CREATE TABLE IF NOT EXISTS detections (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    source TEXT NOT NULL,
    temperature REAL NOT NULL,
    spo2 REAL NOT NULL,
    heart_rate REAL NOT NULL,
    class_id INTEGER NOT NULL,
    label TEXT NOT NULL,
    confidence REAL DEFAULT 0,
    detected_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_detections_detected_at ON detections(detected_at);
`

// Store persists detection history in SQLite.
type Store struct {
	db *sql.DB
}

// Open creates the database file (and its directory) and applies the schema.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("database path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	database, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// Single writer keeps SQLite free of "database is locked" under load.
	database.SetMaxOpenConns(1)

	if _, err := database.Exec(schema); err != nil {
		database.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: database}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveDetection appends one detection and returns its row id.
func (s *Store) SaveDetection(ctx context.Context, d ml.Detection) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
        INSERT INTO detections (source, temperature, spo2, heart_rate, class_id, label, confidence, detected_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.Source, d.Reading.Temperature, d.Reading.SpO2, d.Reading.HeartRate,
		d.ClassID, d.Label.String(), d.Confidence, d.DetectedAt.UTC())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// HistoryEntry is a stored detection.
type HistoryEntry struct {
	ID int64 `json:"id"`
	ml.Detection
}

// RecentDetections returns up to limit detections, newest first.
func (s *Store) RecentDetections(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, source, temperature, spo2, heart_rate, class_id, confidence, detected_at
        FROM detections
        ORDER BY detected_at DESC, id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]HistoryEntry, 0)
	for rows.Next() {
		var (
			e          HistoryEntry
			r          sensor.Reading
			confidence sql.NullFloat64
			detectedAt time.Time
		)
		if err := rows.Scan(&e.ID, &e.Source, &r.Temperature, &r.SpO2, &r.HeartRate, &e.ClassID, &confidence, &detectedAt); err != nil {
			return nil, err
		}
		label, err := ml.LabelForClass(e.ClassID)
		if err != nil {
			return nil, fmt.Errorf("detection %d: %w", e.ID, err)
		}
		e.Reading = r
		e.Label = label
		e.Color = label.Color()
		if confidence.Valid {
			e.Confidence = confidence.Float64
		}
		e.DetectedAt = detectedAt
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountByLabel summarises stored history per label.
func (s *Store) CountByLabel(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT label, COUNT(*) FROM detections GROUP BY label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for _, l := range ml.Labels() {
		counts[l.String()] = 0
	}
	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, err
		}
		counts[label] = n
	}
	return counts, rows.Err()
}
