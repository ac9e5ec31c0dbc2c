package reports

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

type AnalysisStats struct {
	Total    int64 `db:"total" json:"total"`
	Positive int64 `db:"positive" json:"positive"`
	Negative int64 `db:"negative" json:"negative"`
	Neutral  int64 `db:"neutral" json:"neutral"`
}

type SystemStats struct {
	TotalPosts    int64 `db:"total_posts" json:"totalPosts"`
	NegativePosts int64 `db:"negative_posts" json:"negativePosts"`
	ActiveUsers   int64 `db:"active_users" json:"activeUsers"`
}

type SentimentCount struct {
	Sentiment     string  `db:"sentiment" json:"sentiment"`
	Count         int64   `db:"count" json:"count"`
	AvgConfidence float64 `db:"avg_confidence" json:"avgConfidence"`
}

type DayCount struct {
	Day   string `db:"day" json:"day"`
	Count int64  `db:"count" json:"count"`
}

const (
	countPositive = "COALESCE(SUM(CASE WHEN sentiment = 'positive' THEN 1 ELSE 0 END), 0)"
	countNegative = "COALESCE(SUM(CASE WHEN sentiment = 'negative' THEN 1 ELSE 0 END), 0)"
	countNeutral  = "COALESCE(SUM(CASE WHEN sentiment = 'neutral' THEN 1 ELSE 0 END), 0)"
)

func (r *Reporter) AnalysisStats(ctx context.Context) (AnalysisStats, error) {
	query, args, err := r.builder.
		Select(
			"COUNT(*) AS total",
			countPositive+" AS positive",
			countNegative+" AS negative",
			countNeutral+" AS neutral",
		).
		From("analysis").
		ToSql()
	if err != nil {
		return AnalysisStats{}, err
	}

	var stats AnalysisStats
	if err := r.db.GetContext(ctx, &stats, query, args...); err != nil {
		return AnalysisStats{}, fmt.Errorf("analysis stats: %w", err)
	}
	return stats, nil
}

func (r *Reporter) SystemStats(ctx context.Context) (SystemStats, error) {
	query, args, err := r.builder.
		Select(
			"COUNT(*) AS total_posts",
			countNegative+" AS negative_posts",
			"COUNT(DISTINCT user_id) AS active_users",
		).
		From("user_posts").
		ToSql()
	if err != nil {
		return SystemStats{}, err
	}

	var stats SystemStats
	if err := r.db.GetContext(ctx, &stats, query, args...); err != nil {
		return SystemStats{}, fmt.Errorf("system stats: %w", err)
	}
	return stats, nil
}

// SentimentBreakdown groups posts by label; userID 0 covers every user.
func (r *Reporter) SentimentBreakdown(ctx context.Context, userID uint) ([]SentimentCount, error) {
	q := r.builder.
		Select("sentiment", "COUNT(*) AS count", "COALESCE(AVG(confidence), 0) AS avg_confidence").
		From("user_posts").
		GroupBy("sentiment").
		OrderBy("sentiment")
	if userID != 0 {
		q = q.Where(sq.Eq{"user_id": userID})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var rows []SentimentCount
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("sentiment breakdown: %w", err)
	}
	return rows, nil
}

func (r *Reporter) FlaggedCount(ctx context.Context) (int64, error) {
	query, args, err := r.builder.
		Select("COUNT(*)").
		From("user_posts").
		Where(sq.Eq{"sentiment": "negative"}).
		ToSql()
	if err != nil {
		return 0, err
	}

	var n int64
	if err := r.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, fmt.Errorf("flagged count: %w", err)
	}
	return n, nil
}

func (r *Reporter) TotalUsers(ctx context.Context) (int64, error) {
	query, args, err := r.builder.
		Select("COUNT(*)").
		From("users").
		Where(sq.Eq{"deleted_at": nil}).
		ToSql()
	if err != nil {
		return 0, err
	}

	var n int64
	if err := r.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, fmt.Errorf("total users: %w", err)
	}
	return n, nil
}

func (r *Reporter) PostsPerDay(ctx context.Context, since time.Time) ([]DayCount, error) {
	return r.perDay(ctx, "user_posts", since, nil)
}

// ReviewsPerDay counts alerts, i.e. users helped.
func (r *Reporter) ReviewsPerDay(ctx context.Context, since time.Time) ([]DayCount, error) {
	return r.perDay(ctx, "alerts", since, nil)
}

func (r *Reporter) SignupsPerDay(ctx context.Context, since time.Time) ([]DayCount, error) {
	return r.perDay(ctx, "users", since, sq.Eq{"deleted_at": nil})
}

func (r *Reporter) perDay(ctx context.Context, table string, since time.Time, extra sq.Sqlizer) ([]DayCount, error) {
	day := r.dayExpr("created_at")
	q := r.builder.
		Select(day+" AS day", "COUNT(*) AS count").
		From(table).
		Where(sq.GtOrEq{"created_at": since.Local()}).
		GroupBy(day).
		OrderBy("day")
	if extra != nil {
		q = q.Where(extra)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var rows []DayCount
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s per day: %w", table, err)
	}
	return rows, nil
}

// FillDays returns one entry per UTC day from start through end, zero where rows has none.
func FillDays(rows []DayCount, start, end time.Time) []DayCount {
	byDay := make(map[string]int64, len(rows))
	for _, r := range rows {
		byDay[r.Day] = r.Count
	}

	var out []DayCount
	for d := truncateDay(start); !d.After(truncateDay(end)); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		out = append(out, DayCount{Day: key, Count: byDay[key]})
	}
	return out
}

// Cumulative turns per-day counts into running totals.
func Cumulative(days []DayCount) []DayCount {
	out := make([]DayCount, len(days))
	var total int64
	for i, d := range days {
		total += d.Count
		out[i] = DayCount{Day: d.Day, Count: total}
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
