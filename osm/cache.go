package osm

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/apex/log"
	"github.com/golang/geo/s2"

	"verdix/metrics"
)

const (
	// CacheCellLevel is the s2 level used to bucket nearby queries (~150m cells)
	CacheCellLevel = 16
	// CacheTTL is how long cached results are valid
	CacheTTL = 24 * time.Hour
)

// CachedService wraps a Finder with a MySQL cache keyed by s2 cell and radius.
// Cached centers are re-measured against the caller's exact position.
type CachedService struct {
	finder Finder
	db     *sql.DB
}

// NewCachedService creates a new cached recycling center service
func NewCachedService(db *sql.DB, finder Finder) *CachedService {
	return &CachedService{
		finder: finder,
		db:     db,
	}
}

// CreateCacheTable creates the recycling cache table if it doesn't exist
func (s *CachedService) CreateCacheTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS recycling_center_cache (
			id INT AUTO_INCREMENT PRIMARY KEY,
			cell_token VARCHAR(16) NOT NULL,
			radius_m INT NOT NULL,
			centers JSON NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			expires_at TIMESTAMP NOT NULL,
			UNIQUE KEY idx_cell_radius (cell_token, radius_m),
			INDEX idx_expires (expires_at)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create recycling_center_cache table: %w", err)
	}
	log.Info("recycling_center_cache table verified/created")
	return nil
}

// cacheKey buckets a query into its s2 cell token and whole-meter radius
func cacheKey(lat, lon, radiusKm float64) (string, int) {
	cell := s2.CellIDFromLatLng(s2.LatLngFromDegrees(lat, lon)).Parent(CacheCellLevel)
	return cell.ToToken(), int(math.Round(radiusKm * 1000))
}

// FindRecyclingCenters returns cached centers when a fresh entry exists for the
// query's cell, otherwise asks the wrapped Finder and stores the answer.
func (s *CachedService) FindRecyclingCenters(ctx context.Context, lat, lon, radiusKm float64) ([]RecyclingCenter, error) {
	if err := ValidateQuery(lat, lon, radiusKm); err != nil {
		return nil, err
	}
	token, radiusM := cacheKey(lat, lon, radiusKm)

	centers, err := s.getFromCache(ctx, token, radiusM)
	if err != nil {
		log.Warnf("Recycling cache read failed for cell %s: %v", token, err)
	}
	if centers != nil {
		log.Debugf("Recycling cache hit for (%.6f, %.6f) -> cell %s", lat, lon, token)
		metrics.RecyclingLookupsTotal.WithLabelValues("cache").Inc()
		SortByDistance(centers, lat, lon)
		return centers, nil
	}

	// the wrapped Finder counts its own overpass and error lookups
	centers, err = s.finder.FindRecyclingCenters(ctx, lat, lon, radiusKm)
	if err != nil {
		return nil, err
	}

	if err := s.saveToCache(ctx, token, radiusM, centers); err != nil {
		log.Warnf("Failed to cache recycling centers: %v", err)
	}
	return centers, nil
}

// getFromCache returns nil, nil on a miss
func (s *CachedService) getFromCache(ctx context.Context, token string, radiusM int) ([]RecyclingCenter, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `
		SELECT centers
		FROM recycling_center_cache
		WHERE cell_token = ? AND radius_m = ? AND expires_at > NOW()
	`, token, radiusM).Scan(&raw)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	centers := []RecyclingCenter{}
	if err := json.Unmarshal([]byte(raw), &centers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached centers: %w", err)
	}
	return centers, nil
}

func (s *CachedService) saveToCache(ctx context.Context, token string, radiusM int, centers []RecyclingCenter) error {
	data, err := json.Marshal(centers)
	if err != nil {
		return fmt.Errorf("failed to marshal centers: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO recycling_center_cache (cell_token, radius_m, centers, expires_at)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			centers = VALUES(centers),
			expires_at = VALUES(expires_at),
			created_at = NOW()
	`, token, radiusM, string(data), time.Now().Add(CacheTTL))
	if err != nil {
		return fmt.Errorf("failed to save to cache: %w", err)
	}
	return nil
}

// CleanExpiredCache removes expired cache entries
func (s *CachedService) CleanExpiredCache(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM recycling_center_cache WHERE expires_at < NOW()")
	if err != nil {
		return 0, fmt.Errorf("failed to clean expired cache: %w", err)
	}

	rows, _ := result.RowsAffected()
	return rows, nil
}
