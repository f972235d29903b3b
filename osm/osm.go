package osm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/golang/geo/s2"

	"verdix/metrics"
)

const (
	// OverpassBaseURL is the public Overpass API endpoint
	OverpassBaseURL = "https://overpass-api.de/api/interpreter"
	// UserAgent identifies us to the Overpass operators
	UserAgent = "Verdix/1.0 (recycling-centers)"
	// MaxRadiusKm bounds the search area
	MaxRadiusKm = 50.0

	earthRadiusKm      = 6371.0
	minRequestInterval = time.Second
)

var (
	ErrInvalidRadius      = errors.New("radius must be greater than 0 and at most 50 km")
	ErrInvalidCoordinates = errors.New("latitude must be within [-90, 90] and longitude within [-180, 180]")
)

// RecyclingCenter is a drop-off point near the user.
type RecyclingCenter struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Type     string  `json:"type"`
	Address  string  `json:"address"`
	Distance float64 `json:"distance"` // km, two decimals
}

// Finder looks up recycling centers around a point.
type Finder interface {
	FindRecyclingCenters(ctx context.Context, lat, lon, radiusKm float64) ([]RecyclingCenter, error)
}

// OverpassResponse is the response from the Overpass API
type OverpassResponse struct {
	Elements []OverpassElement `json:"elements"`
}

// OverpassElement represents an element from Overpass
type OverpassElement struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat,omitempty"`
	Lon    *float64          `json:"lon,omitempty"`
	Center *OverpassCenter   `json:"center,omitempty"`
	Tags   map[string]string `json:"tags,omitempty"`
}

// OverpassCenter is the center of a way
type OverpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Client queries Overpass with a minimum interval between requests
type Client struct {
	baseURL       string
	httpClient    *http.Client
	minInterval   time.Duration
	lastRequest   time.Time
	rateLimitLock sync.Mutex
}

// NewClient creates a new Overpass client. An empty baseURL means the public instance.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = OverpassBaseURL
	}
	return &Client{
		baseURL:     baseURL,
		minInterval: minRequestInterval,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ValidateQuery checks the coordinates and radius of a lookup.
func ValidateQuery(lat, lon, radiusKm float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return ErrInvalidCoordinates
	}
	if math.IsNaN(radiusKm) || radiusKm <= 0 || radiusKm > MaxRadiusKm {
		return ErrInvalidRadius
	}
	return nil
}

func (c *Client) enforceRateLimit(ctx context.Context) error {
	c.rateLimitLock.Lock()
	defer c.rateLimitLock.Unlock()

	if wait := c.minInterval - time.Since(c.lastRequest); wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c.lastRequest = time.Now()
	return nil
}

func buildQuery(lat, lon, radiusKm float64) string {
	around := fmt.Sprintf("(around:%d,%f,%f)", int(math.Round(radiusKm*1000)), lat, lon)
	return `[out:json][timeout:25];
(
  node["amenity"="recycling"]` + around + `;
  way["amenity"="recycling"]` + around + `;
  node["shop"="recycling"]` + around + `;
  node["amenity"="waste_disposal"]` + around + `;
  way["amenity"="waste_disposal"]` + around + `;
);
out center;
`
}

// FindRecyclingCenters queries Overpass for recycling points within radiusKm of
// (lat, lon), nearest first.
func (c *Client) FindRecyclingCenters(ctx context.Context, lat, lon, radiusKm float64) ([]RecyclingCenter, error) {
	if err := ValidateQuery(lat, lon, radiusKm); err != nil {
		return nil, err
	}
	centers, err := c.query(ctx, lat, lon, radiusKm)
	if err != nil {
		metrics.RecyclingLookupsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.RecyclingLookupsTotal.WithLabelValues("overpass").Inc()
	return centers, nil
}

func (c *Client) query(ctx context.Context, lat, lon, radiusKm float64) ([]RecyclingCenter, error) {
	if err := c.enforceRateLimit(ctx); err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s?data=%s", c.baseURL, url.QueryEscape(buildQuery(lat, lon, radiusKm)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Overpass request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute Overpass request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("overpass returned status %d: %s", resp.StatusCode, string(body))
	}

	var overpassResp OverpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&overpassResp); err != nil {
		return nil, fmt.Errorf("failed to decode Overpass response: %w", err)
	}

	centers := make([]RecyclingCenter, 0, len(overpassResp.Elements))
	for _, elem := range overpassResp.Elements {
		if rc, ok := elem.toCenter(); ok {
			centers = append(centers, rc)
		}
	}
	SortByDistance(centers, lat, lon)
	return centers, nil
}

// toCenter maps an element to a RecyclingCenter without a distance.
// Elements with neither coordinates nor a center are skipped.
func (e OverpassElement) toCenter() (RecyclingCenter, bool) {
	var lat, lon float64
	switch {
	case e.Lat != nil && e.Lon != nil:
		lat, lon = *e.Lat, *e.Lon
	case e.Center != nil:
		lat, lon = e.Center.Lat, e.Center.Lon
	default:
		return RecyclingCenter{}, false
	}
	return RecyclingCenter{
		ID:      e.ID,
		Name:    firstTag(e.Tags, "Recycling Point", "name", "operator"),
		Lat:     lat,
		Lon:     lon,
		Type:    firstTag(e.Tags, "recycling", "recycling_type", "amenity"),
		Address: address(e.Tags),
	}, true
}

func firstTag(tags map[string]string, fallback string, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(tags[k]); v != "" {
			return v
		}
	}
	return fallback
}

func address(tags map[string]string) string {
	var parts []string
	for _, k := range []string{"addr:street", "addr:housenumber", "addr:city"} {
		if v := strings.TrimSpace(tags[k]); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return "Address not available"
	}
	return strings.Join(parts, ", ")
}

// DistanceKm is the great-circle distance between two points.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	a := s2.LatLngFromDegrees(lat1, lon1)
	b := s2.LatLngFromDegrees(lat2, lon2)
	return a.Distance(b).Radians() * earthRadiusKm
}

// SortByDistance fills in Distance relative to (lat, lon) and orders the
// centers nearest first.
func SortByDistance(centers []RecyclingCenter, lat, lon float64) {
	for i := range centers {
		d := DistanceKm(lat, lon, centers[i].Lat, centers[i].Lon)
		centers[i].Distance = math.Round(d*100) / 100
	}
	sort.SliceStable(centers, func(i, j int) bool {
		return centers[i].Distance < centers[j].Distance
	})
}
