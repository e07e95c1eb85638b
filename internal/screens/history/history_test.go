package history

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyhall/internal/mockbackend"
	"github.com/abhisek/studyhall/internal/screens/screentest"
	"github.com/abhisek/studyhall/internal/store"
)

func intPtr(v int) *int { return &v }

func TestGroupSessions(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	// Newest first, as QueryEvents returns them.
	events := []store.SessionEvent{
		{ID: 5, CreatedAt: base.Add(5 * time.Minute), SessionEventData: store.SessionEventData{SessionID: "b", Kind: "quiz", SetID: "2", Action: "score", Score: intPtr(80)}},
		{ID: 4, CreatedAt: base.Add(4 * time.Minute), SessionEventData: store.SessionEventData{SessionID: "b", Kind: "quiz", SetID: "2", Action: "load"}},
		{ID: 3, CreatedAt: base.Add(2 * time.Minute), SessionEventData: store.SessionEventData{SessionID: "a", Kind: "study", SetID: "1", Action: "complete"}},
		{ID: 2, CreatedAt: base.Add(1 * time.Minute), SessionEventData: store.SessionEventData{SessionID: "a", Kind: "study", SetID: "1", Action: "review"}},
		{ID: 1, CreatedAt: base, SessionEventData: store.SessionEventData{SessionID: "a", Kind: "study", SetID: "1", Action: "load"}},
	}

	sessions := GroupSessions(events)
	require.Len(t, sessions, 2)

	assert.Equal(t, "b", sessions[0].ID)
	require.NotNil(t, sessions[0].Score)
	assert.Equal(t, 80, *sessions[0].Score)

	a := sessions[1]
	assert.Equal(t, "study", a.Kind)
	assert.Equal(t, base, a.Started)
	assert.Equal(t, base.Add(2*time.Minute), a.Ended)
	assert.Nil(t, a.Score)
	require.Len(t, a.Events, 3)
	assert.Equal(t, "load", a.Events[0].Action)
	assert.Equal(t, "complete", a.Events[2].Action)
}

func TestHistoryScreen_ShowsJournal(t *testing.T) {
	env := screentest.LoggedIn(t, mockbackend.Options{})
	st, err := store.OpenPath(filepath.Join(t.TempDir(), "studyhall.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	set := env.Sets(t)[0]
	repo := st.EventRepo()
	ctx := context.Background()
	require.NoError(t, repo.AppendSessionEvent(ctx, store.SessionEventData{
		SessionID: "s1", Kind: "quiz", SetID: set.ID.String(), Action: "load", Detail: "questions=3",
	}))
	require.NoError(t, repo.AppendSessionEvent(ctx, store.SessionEventData{
		SessionID: "s1", Kind: "quiz", SetID: set.ID.String(), Action: "score", Score: intPtr(67),
	}))

	deps := env.Deps
	deps.Events = repo
	s := New(deps)
	got, _ := screentest.Run(s, s.Init())
	s = got.(*HistoryScreen)

	view := s.View(120, 40)
	assert.Contains(t, view, set.Title)
	assert.Contains(t, view, "score 67")
	assert.Contains(t, view, "quiz: 1 (avg 67)")
	assert.NotContains(t, view, "questions=3")

	got, _ = screentest.Press(s, "enter")
	s = got.(*HistoryScreen)
	assert.Contains(t, s.View(120, 40), "questions=3")
}

func TestHistoryScreen_DisabledJournal(t *testing.T) {
	env := screentest.LoggedIn(t, mockbackend.Options{})
	s := New(env.Deps)
	got, _ := screentest.Run(s, s.Init())
	view := got.View(100, 20)
	if !strings.Contains(view, "turned off") {
		t.Errorf("view = %q", view)
	}
}
