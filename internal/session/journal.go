package session

import (
	"context"

	"github.com/abhisek/studyhall/internal/api"
	"github.com/abhisek/studyhall/internal/store"
)

// Event is one journal entry describing something that happened in a session.
type Event struct {
	SessionID string
	// Kind is "study", "quiz" or "arena".
	Kind   string
	SetID  api.ID
	Action string
	Detail string
	Score  *int
}

// Journal records session events locally. Writes are best-effort.
type Journal interface {
	Record(ctx context.Context, e Event) error
}

// JournalFunc adapts a function to Journal.
type JournalFunc func(ctx context.Context, e Event) error

func (f JournalFunc) Record(ctx context.Context, e Event) error { return f(ctx, e) }

// NewStoreJournal writes events to the local session_events table.
func NewStoreJournal(repo store.EventRepo) Journal {
	return JournalFunc(func(ctx context.Context, e Event) error {
		return repo.AppendSessionEvent(ctx, store.SessionEventData{
			SessionID: e.SessionID,
			Kind:      e.Kind,
			SetID:     e.SetID.String(),
			Action:    e.Action,
			Detail:    e.Detail,
			Score:     e.Score,
		})
	})
}
