package profile

import (
	"math"
	"sort"
	"time"

	"verdix/database"
)

// Per-scan savings estimates
const (
	CarbonKgPerScan  = 2.5
	PlasticKgPerScan = 0.5
	WaterLPerScan    = 50.0
)

type Stats struct {
	TotalScans     int     `json:"total_scans"`
	CarbonSavedKg  float64 `json:"carbon_saved_kg"`
	PlasticAvoided float64 `json:"plastic_avoided_kg"`
	WaterSavedL    float64 `json:"water_saved_liters"`
	Streak         int     `json:"streak"`
	BestScore      int     `json:"best_score"`
	WorstScore     int     `json:"worst_score"`
}

type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Unlocked    bool   `json:"unlocked"`
	Progress    *int   `json:"progress,omitempty"`
	Total       *int   `json:"total,omitempty"`
}

type Profile struct {
	UserID       string        `json:"user_id"`
	Stats        Stats         `json:"stats"`
	Achievements []Achievement `json:"achievements"`
}

// Build derives stats and achievements from a user's history. now fixes the
// reference day for the streak; days are compared in now's location.
func Build(userID string, scans []database.Scan, now time.Time) Profile {
	stats := Compute(scans, now)
	return Profile{
		UserID:       userID,
		Stats:        stats,
		Achievements: Achievements(stats),
	}
}

func Compute(scans []database.Scan, now time.Time) Stats {
	var s Stats
	if len(scans) == 0 {
		return s
	}
	s.TotalScans = len(scans)
	s.BestScore, s.WorstScore = scans[0].Score, scans[0].Score
	for _, sc := range scans[1:] {
		if sc.Score > s.BestScore {
			s.BestScore = sc.Score
		}
		if sc.Score < s.WorstScore {
			s.WorstScore = sc.Score
		}
	}
	n := float64(s.TotalScans)
	s.CarbonSavedKg = n * CarbonKgPerScan
	s.PlasticAvoided = n * PlasticKgPerScan
	s.WaterSavedL = n * WaterLPerScan

	times := make([]time.Time, len(scans))
	for i, sc := range scans {
		times[i] = sc.CreatedAt
	}
	s.Streak = Streak(times, now)
	return s
}

// civil is a calendar day independent of clock time and DST
type civil struct{ y, m, d int }

func dayOf(t time.Time) civil {
	y, m, d := t.Date()
	return civil{y, int(m), d}
}

func (c civil) prev() civil {
	t := time.Date(c.y, time.Month(c.m), c.d, 12, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return dayOf(t)
}

func (c civil) before(o civil) bool {
	if c.y != o.y {
		return c.y < o.y
	}
	if c.m != o.m {
		return c.m < o.m
	}
	return c.d < o.d
}

// Streak counts consecutive calendar days with at least one scan. The run
// must end today or yesterday, otherwise it is broken and counts 0.
func Streak(times []time.Time, now time.Time) int {
	if len(times) == 0 {
		return 0
	}
	loc := now.Location()
	seen := make(map[civil]bool)
	var days []civil
	for _, t := range times {
		d := dayOf(t.In(loc))
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[j].before(days[i]) })

	today := dayOf(now)
	if days[0] != today && days[0] != today.prev() {
		return 0
	}
	streak := 1
	for i := 1; i < len(days); i++ {
		if days[i] != days[i-1].prev() {
			break
		}
		streak++
	}
	return streak
}

func intp(v int) *int { return &v }

func Achievements(s Stats) []Achievement {
	carbon := int(math.Round(s.CarbonSavedKg))
	plastic := int(math.Round(s.PlasticAvoided))
	return []Achievement{
		{ID: "first-scan", Title: "First Step", Description: "Complete your first scan", Icon: "🌱",
			Unlocked: s.TotalScans >= 1},
		{ID: "scan-10", Title: "Getting Started", Description: "Scan 10 products", Icon: "🌿",
			Unlocked: s.TotalScans >= 10, Progress: intp(s.TotalScans), Total: intp(10)},
		{ID: "scan-50", Title: "Eco Warrior", Description: "Scan 50 products", Icon: "🌳",
			Unlocked: s.TotalScans >= 50, Progress: intp(s.TotalScans), Total: intp(50)},
		{ID: "streak-7", Title: "Week Streak", Description: "Scan for 7 days in a row", Icon: "🔥",
			Unlocked: s.Streak >= 7, Progress: intp(s.Streak), Total: intp(7)},
		{ID: "carbon-saver", Title: "Carbon Saver", Description: "Save 50kg of CO2", Icon: "💨",
			Unlocked: s.CarbonSavedKg >= 50, Progress: intp(carbon), Total: intp(50)},
		{ID: "plastic-fighter", Title: "Plastic Fighter", Description: "Avoid 10kg of plastic", Icon: "♻️",
			Unlocked: s.PlasticAvoided >= 10, Progress: intp(plastic), Total: intp(10)},
	}
}
