package store

import (
	"context"
	"time"
)

// QueryOpts filters and pages event queries. Zero values mean "no filter".
type QueryOpts struct {
	Limit     int       // max results (0 = unlimited)
	After     int64     // id > After
	Before    int64     // id < Before
	From      time.Time // created_at >= From
	To        time.Time // created_at <= To
	SessionID string
	Kind      string
	SetID     string
}

// SessionEventData is one thing that happened during a session.
type SessionEventData struct {
	SessionID string
	// Kind is the session type: study, quiz or arena.
	Kind   string
	SetID  string
	Action string
	Detail string
	// Score is set for scored events (quiz percent, arena grade).
	Score *int
}

// SessionEvent is a stored SessionEventData.
type SessionEvent struct {
	ID        int64
	CreatedAt time.Time
	SessionEventData
}

// KindStats summarises the journal for one session kind.
type KindStats struct {
	Kind     string
	Sessions int
	Events   int
	// AvgScore is the mean of scored events, nil when there are none.
	AvgScore *float64
	Last     time.Time
}

// EventRepo provides append and query access to the session journal.
type EventRepo interface {
	// AppendSessionEvent records one event.
	AppendSessionEvent(ctx context.Context, data SessionEventData) error

	// QueryEvents returns events matching opts, newest first.
	QueryEvents(ctx context.Context, opts QueryOpts) ([]SessionEvent, error)

	// Stats aggregates the journal per session kind.
	Stats(ctx context.Context) ([]KindStats, error)

	// Prune deletes events created before cutoff and reports how many.
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}
