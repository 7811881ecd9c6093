package session

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite"
)

// Default go-to qualification thresholds.
const (
	DefaultGoToMinAttempts    = 4
	DefaultGoToMinHitRate     = 0.6
	DefaultGoToMaxProximityFt = 20.0
)

// Shot is one recorded shot outcome.
type Shot struct {
	// Club is the canonical club id, e.g. "7-iron".
	Club string

	// DistanceBin is the binned target distance the shot was played from.
	DistanceBin int

	// WindBin labels the wind context the shot was played in.
	WindBin string

	// Hit reports whether the shot came off as intended.
	Hit bool

	// ProximityFt is the finishing distance from the target in feet.
	ProximityFt float64
}

// RoundLog persists shot outcomes in a local SQLite database and answers
// whether a club is a proven go-to from a given distance. It exists to
// season recommendations, so callers treat its errors as advisory: a
// failed lookup never blocks a recommendation.
type RoundLog struct {
	db          *sql.DB
	minAttempts int
	minHitRate  float64
	maxProxFt   float64
}

// RoundLogOption configures a [RoundLog].
type RoundLogOption func(*RoundLog)

// WithGoToThresholds overrides the qualification thresholds: a club needs
// at least minAttempts recorded shots from the distance bin, a hit rate
// of minHitRate or better, and a median proximity within maxProxFt.
func WithGoToThresholds(minAttempts int, minHitRate, maxProxFt float64) RoundLogOption {
	return func(r *RoundLog) {
		r.minAttempts = minAttempts
		r.minHitRate = minHitRate
		r.maxProxFt = maxProxFt
	}
}

// OpenRoundLog opens (creating if needed) the shot database at path.
func OpenRoundLog(path string, opts ...RoundLogOption) (*RoundLog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("round log: create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("round log: open database: %w", err)
	}

	r := &RoundLog{
		db:          db,
		minAttempts: DefaultGoToMinAttempts,
		minHitRate:  DefaultGoToMinHitRate,
		maxProxFt:   DefaultGoToMaxProximityFt,
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *RoundLog) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS shots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		club TEXT NOT NULL,
		distance_bin INTEGER NOT NULL,
		wind_bin TEXT NOT NULL DEFAULT '',
		hit INTEGER NOT NULL,
		proximity_ft REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_shots_club_bin ON shots(club, distance_bin);
	`
	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("round log: create schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (r *RoundLog) Close() error {
	return r.db.Close()
}

// Record stores one shot outcome.
func (r *RoundLog) Record(ctx context.Context, s Shot) error {
	hit := 0
	if s.Hit {
		hit = 1
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO shots (club, distance_bin, wind_bin, hit, proximity_ft)
		 VALUES (?, ?, ?, ?, ?)`,
		s.Club, s.DistanceBin, s.WindBin, hit, s.ProximityFt)
	if err != nil {
		return fmt.Errorf("round log: record shot: %w", err)
	}
	return nil
}

// GoToHint reports whether club is a proven go-to from distanceBin and,
// when it is, a short phrase describing the record, e.g.
// "7-iron from the 150 range: 5 of 6 on target, median 14 ft". ok is
// false when the club has not earned the label yet.
func (r *RoundLog) GoToHint(ctx context.Context, club string, distanceBin int) (hint string, ok bool, err error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT hit, proximity_ft FROM shots WHERE club = ? AND distance_bin = ?`,
		club, distanceBin)
	if err != nil {
		return "", false, fmt.Errorf("round log: query shots: %w", err)
	}
	defer rows.Close()

	var (
		hits        int
		proximities []float64
	)
	for rows.Next() {
		var hit int
		var prox float64
		if err := rows.Scan(&hit, &prox); err != nil {
			return "", false, fmt.Errorf("round log: scan shot: %w", err)
		}
		if hit != 0 {
			hits++
		}
		proximities = append(proximities, prox)
	}
	if err := rows.Err(); err != nil {
		return "", false, fmt.Errorf("round log: iterate shots: %w", err)
	}

	attempts := len(proximities)
	if attempts < r.minAttempts {
		return "", false, nil
	}
	if float64(hits)/float64(attempts) < r.minHitRate {
		return "", false, nil
	}
	med := median(proximities)
	if med > r.maxProxFt {
		return "", false, nil
	}

	hint = fmt.Sprintf("%s from the %d range: %d of %d on target, median %.0f ft",
		club, distanceBin, hits, attempts, med)
	return hint, true, nil
}

func median(v []float64) float64 {
	s := make([]float64, len(v))
	copy(s, v)
	sort.Float64s(s)
	n := len(s)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}
