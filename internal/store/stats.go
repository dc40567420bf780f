package store

import (
	"context"
	"fmt"
	"time"
)

// Stats is the admin dashboard summary.
type Stats struct {
	TotalVisitors    int64            `json:"total_visitors"`
	UniqueVisitors   int64            `json:"unique_visitors"`
	VisitorsToday    int64            `json:"visitors_today"`
	VisitorsThisWeek int64            `json:"visitors_this_week"`
	ThemeChoices     map[string]int64 `json:"theme_choices"`
	RecentVisitors   []Visit          `json:"recent_visitors"`
}

// Stats gathers the dashboard numbers.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{ThemeChoices: map[string]int64{}}
	t := now()
	startOfDay := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)

	counts := []struct {
		name  string
		query string
		args  []any
		dst   *int64
	}{
		{"total visitors", `SELECT COUNT(*) FROM visitors`, nil, &stats.TotalVisitors},
		{"unique visitors", `SELECT COUNT(DISTINCT hashed_ip) FROM visitors`, nil, &stats.UniqueVisitors},
		{"visitors today", `SELECT COUNT(*) FROM visitors WHERE timestamp >= ?`, []any{startOfDay}, &stats.VisitorsToday},
		{"visitors this week", `SELECT COUNT(*) FROM visitors WHERE timestamp >= ?`, []any{t.Add(-7 * 24 * time.Hour)}, &stats.VisitorsThisWeek},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("counting %s: %w", c.name, err)
		}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT value, COUNT(*) FROM preferences WHERE key = 'theme' GROUP BY value`)
	if err != nil {
		return nil, fmt.Errorf("counting theme choices: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			value string
			n     int64
		)
		if err := rows.Scan(&value, &n); err != nil {
			return nil, fmt.Errorf("scanning theme choice: %w", err)
		}
		stats.ThemeChoices[value] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats.RecentVisitors, err = s.RecentVisits(ctx, 50)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
