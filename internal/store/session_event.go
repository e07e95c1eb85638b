package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const sessionEventsTable = "session_events"

type eventRepo struct {
	db  *sql.DB
	now func() time.Time
}

func (r *eventRepo) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	var score any
	if data.Score != nil {
		score = *data.Score
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(sessionEventsTable).
		Columns("session_id", "kind", "set_id", "action", "detail", "score", "created_at").
		Values(data.SessionID, data.Kind, data.SetID, data.Action, data.Detail, score, r.clock().UnixMilli()).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryEvents(ctx context.Context, opts QueryOpts) ([]SessionEvent, error) {
	b := entsql.Dialect(dialect.SQLite)
	sel := b.Select("id", "session_id", "kind", "set_id", "action", "detail", "score", "created_at").
		From(b.Table(sessionEventsTable)).
		OrderBy(entsql.Desc("id"))

	if opts.After > 0 {
		sel.Where(entsql.GT("id", opts.After))
	}
	if opts.Before > 0 {
		sel.Where(entsql.LT("id", opts.Before))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("created_at", opts.From.UnixMilli()))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE("created_at", opts.To.UnixMilli()))
	}
	if opts.SessionID != "" {
		sel.Where(entsql.EQ("session_id", opts.SessionID))
	}
	if opts.Kind != "" {
		sel.Where(entsql.EQ("kind", opts.Kind))
	}
	if opts.SetID != "" {
		sel.Where(entsql.EQ("set_id", opts.SetID))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	defer rows.Close()

	var events []SessionEvent
	for rows.Next() {
		var (
			e       SessionEvent
			score   sql.NullInt64
			created int64
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Kind, &e.SetID, &e.Action, &e.Detail, &score, &created); err != nil {
			return nil, fmt.Errorf("scan session event: %w", err)
		}
		if score.Valid {
			v := int(score.Int64)
			e.Score = &v
		}
		e.CreatedAt = time.UnixMilli(created).UTC()
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session events: %w", err)
	}
	return events, nil
}

func (r *eventRepo) Stats(ctx context.Context) ([]KindStats, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select(
		"kind",
		"COUNT(DISTINCT session_id)",
		entsql.Count("*"),
		"AVG(score)",
		"MAX(created_at)",
	).
		From(b.Table(sessionEventsTable)).
		GroupBy("kind").
		OrderBy("kind").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query session stats: %w", err)
	}
	defer rows.Close()

	var stats []KindStats
	for rows.Next() {
		var (
			s    KindStats
			avg  sql.NullFloat64
			last int64
		)
		if err := rows.Scan(&s.Kind, &s.Sessions, &s.Events, &avg, &last); err != nil {
			return nil, fmt.Errorf("scan session stats: %w", err)
		}
		if avg.Valid {
			v := avg.Float64
			s.AvgScore = &v
		}
		s.Last = time.UnixMilli(last).UTC()
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session stats: %w", err)
	}
	return stats, nil
}

func (r *eventRepo) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Delete(sessionEventsTable).
		Where(entsql.LT("created_at", cutoff.UnixMilli())).
		Query()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("prune session events: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune session events: %w", err)
	}
	return n, nil
}
