package rabbitmq

import (
	"strconv"
	"time"

	"verdix/parser"
)

// ScanAnalyzed is published after a scan is parsed and stored
type ScanAnalyzed struct {
	ScanID      string    `json:"scan_id"`
	UserID      string    `json:"user_id"`
	ProductName string    `json:"product_name"`
	Brand       string    `json:"brand"`
	Score       int       `json:"score"`
	ScoreLabel  string    `json:"score_label"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewScanAnalyzed builds the event for a parsed report. A zero scanID means
// the scan was not persisted and is sent as an empty string.
func NewScanAnalyzed(scanID int64, userID string, r parser.Report, at time.Time) ScanAnalyzed {
	id := ""
	if scanID > 0 {
		id = strconv.FormatInt(scanID, 10)
	}
	return ScanAnalyzed{
		ScanID:      id,
		UserID:      userID,
		ProductName: r.ProductName,
		Brand:       r.Brand,
		Score:       r.Score,
		ScoreLabel:  string(r.ScoreLabel),
		Timestamp:   at.UTC(),
	}
}
