package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/apex/log"
	_ "github.com/go-sql-driver/mysql"

	"verdix/parser"
)

// Scan is one analyzed product photo in a user's history
type Scan struct {
	ID           int64         `json:"id"`
	UserID       string        `json:"user_id"`
	Source       string        `json:"source"`
	ProductName  string        `json:"product_name"`
	Brand        string        `json:"brand"`
	Category     string        `json:"category"`
	Score        int           `json:"score"`
	AnalysisText string        `json:"analysis_text"`
	Report       parser.Report `json:"report"`
	CreatedAt    time.Time     `json:"created_at"`
}

// NewScan fills the denormalized columns from the parsed report
func NewScan(userID, source, analysisText string, report parser.Report) *Scan {
	return &Scan{
		UserID:       userID,
		Source:       source,
		ProductName:  report.ProductName,
		Brand:        report.Brand,
		Category:     report.Category,
		Score:        report.Score,
		AnalysisText: analysisText,
		Report:       report,
		CreatedAt:    time.Now().UTC(),
	}
}

// Store keeps per-user scan history, newest first
type Store interface {
	SaveScan(ctx context.Context, scan *Scan) (int64, error)
	ListScans(ctx context.Context, userID string, limit int) ([]Scan, error)
	TrimScans(ctx context.Context, userID string, keep int) (int64, error)
	ClearScans(ctx context.Context, userID string) (int64, error)
	Close() error
}

// Database is the MySQL backed Store
type Database struct {
	db *sql.DB
}

// NewDatabase opens dsn and waits for the server with exponential backoff
// until it answers or ctx is done.
func NewDatabase(ctx context.Context, dsn string) (*Database, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	waitInterval := time.Second
	for {
		err := db.PingContext(ctx)
		if err == nil {
			break
		}
		log.Warnf("Database connection failed, retrying in %v: %v", waitInterval, err)
		select {
		case <-time.After(waitInterval):
		case <-ctx.Done():
			db.Close()
			return nil, fmt.Errorf("database not reachable: %w", err)
		}
		if waitInterval < 30*time.Second {
			waitInterval *= 2
		}
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Database{db: db}, nil
}

// New wraps an existing connection
func New(db *sql.DB) *Database {
	return &Database{db: db}
}

// DB exposes the connection for services sharing it (the recycling cache)
func (d *Database) DB() *sql.DB {
	return d.db
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// CreateScansTable creates the scans table if it doesn't exist
func (d *Database) CreateScansTable(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS scans (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id VARCHAR(255) NOT NULL,
		source VARCHAR(64) NOT NULL DEFAULT '',
		product_name VARCHAR(500) NOT NULL,
		brand VARCHAR(255) NOT NULL DEFAULT '',
		category VARCHAR(255) NOT NULL DEFAULT '',
		score TINYINT NOT NULL,
		analysis_text MEDIUMTEXT,
		report_json JSON NOT NULL,
		created_at TIMESTAMP(3) NOT NULL,
		INDEX idx_scans_user_created (user_id, created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci
	`
	if _, err := d.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create scans table: %w", err)
	}
	log.Info("scans table verified/created")
	return nil
}

// SaveScan inserts scan and sets its ID
func (d *Database) SaveScan(ctx context.Context, scan *Scan) (int64, error) {
	reportJSON, err := json.Marshal(scan.Report)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal report: %w", err)
	}

	result, err := d.db.ExecContext(ctx, `
		INSERT INTO scans (user_id, source, product_name, brand, category, score, analysis_text, report_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		scan.UserID, scan.Source, scan.ProductName, scan.Brand, scan.Category, scan.Score,
		scan.AnalysisText, string(reportJSON), scan.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert scan: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get scan id: %w", err)
	}
	scan.ID = id
	return id, nil
}

// ListScans returns up to limit scans for userID, newest first
func (d *Database) ListScans(ctx context.Context, userID string, limit int) ([]Scan, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, user_id, source, product_name, brand, category, score, analysis_text, report_json, created_at
		FROM scans
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scans: %w", err)
	}
	defer rows.Close()

	scans := []Scan{}
	for rows.Next() {
		var s Scan
		var analysis sql.NullString
		var reportJSON string
		if err := rows.Scan(&s.ID, &s.UserID, &s.Source, &s.ProductName, &s.Brand, &s.Category,
			&s.Score, &analysis, &reportJSON, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		s.AnalysisText = analysis.String
		if err := json.Unmarshal([]byte(reportJSON), &s.Report); err != nil {
			log.Warnf("Scan %d has an unreadable report: %v", s.ID, err)
		}
		scans = append(scans, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scans: %w", err)
	}
	return scans, nil
}

// TrimScans deletes everything but the newest keep scans of userID
func (d *Database) TrimScans(ctx context.Context, userID string, keep int) (int64, error) {
	// MySQL rejects LIMIT inside IN subqueries, so the kept ids go through a derived table
	result, err := d.db.ExecContext(ctx, `
		DELETE FROM scans
		WHERE user_id = ? AND id NOT IN (
			SELECT id FROM (
				SELECT id FROM scans WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?
			) AS kept
		)`, userID, userID, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to trim scans: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

// ClearScans deletes the whole history of userID
func (d *Database) ClearScans(ctx context.Context, userID string) (int64, error) {
	result, err := d.db.ExecContext(ctx, "DELETE FROM scans WHERE user_id = ?", userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear scans: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}
