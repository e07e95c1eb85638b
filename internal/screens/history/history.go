// Package history lists past sessions from the local journal.
package history

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/screen"
	"github.com/abhisek/studyhall/internal/store"
	"github.com/abhisek/studyhall/internal/ui/components"
	"github.com/abhisek/studyhall/internal/ui/layout"
	"github.com/abhisek/studyhall/internal/ui/theme"
)

// eventLimit bounds how much of the journal one visit loads.
const eventLimit = 500

// Session is the journal entries sharing one session id.
type Session struct {
	ID      string
	Kind    string
	SetID   string
	Started time.Time
	Ended   time.Time
	// Events are oldest first.
	Events []store.SessionEvent
	// Score is the last scored event, if any.
	Score *int
}

type historyLoadedMsg struct {
	Sessions []Session
	Stats    []store.KindStats
	Titles   map[string]string
	Err      error
}

// HistoryScreen displays past sessions and per-kind totals.
type HistoryScreen struct {
	deps     screen.Deps
	sessions []Session
	stats    []store.KindStats
	titles   map[string]string
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(deps screen.Deps) *HistoryScreen {
	return &HistoryScreen{
		deps:     deps,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo, client := s.deps.Events, s.deps.Client
	return func() tea.Msg {
		if repo == nil {
			return historyLoadedMsg{}
		}
		ctx := context.Background()

		events, err := repo.QueryEvents(ctx, store.QueryOpts{Limit: eventLimit})
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		stats, err := repo.Stats(ctx)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}

		// Titles are cosmetic; ids are shown when the backend is unreachable.
		titles := make(map[string]string)
		if client != nil {
			if sets, err := client.StudySets(ctx); err == nil {
				for _, set := range sets {
					titles[set.ID.String()] = set.Title
				}
			}
		}
		return historyLoadedMsg{Sessions: GroupSessions(events), Stats: stats, Titles: titles}
	}
}

// GroupSessions folds newest-first events into sessions, newest first.
func GroupSessions(events []store.SessionEvent) []Session {
	index := make(map[string]int)
	var sessions []Session
	for _, e := range events {
		i, ok := index[e.SessionID]
		if !ok {
			i = len(sessions)
			index[e.SessionID] = i
			sessions = append(sessions, Session{
				ID:    e.SessionID,
				Kind:  e.Kind,
				SetID: e.SetID,
				Ended: e.CreatedAt,
			})
		}
		sess := &sessions[i]
		sess.Started = e.CreatedAt
		sess.Events = append(sess.Events, e)
		if e.Score != nil && sess.Score == nil {
			sess.Score = e.Score
		}
	}
	for i := range sessions {
		slices.Reverse(sessions[i].Events)
	}
	return sessions
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
			s.stats = msg.Stats
			s.titles = msg.Titles
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	centered := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	if s.deps.Events == nil {
		return centered.Foreground(theme.TextDim).Italic(true).
			Render("\n\n  Local history is turned off.")
	}
	if s.errMsg != "" {
		return centered.Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return centered.Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.sessions) == 0 {
		return centered.Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No sessions yet. Start studying!")
	}

	cw := components.ContentWidth(width)
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.renderStats(cw)))
	b.WriteString("\n\n")

	for i, sess := range s.sessions {
		style := lipgloss.NewStyle().Foreground(theme.Text)
		prefix := "  "
		if i == s.selected {
			prefix = "▸ "
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			style.Render(prefix+s.sessionLine(sess))))
		b.WriteString("\n")

		if s.expanded[i] {
			for _, e := range sess.Events {
				line := fmt.Sprintf("    %s  %-14s %s", e.CreatedAt.Local().Format("15:04:05"), e.Action, e.Detail)
				if e.Score != nil {
					line += fmt.Sprintf("  (%d)", *e.Score)
				}
				b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
					lipgloss.NewStyle().Foreground(theme.TextDim).Render(line)))
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

func (s *HistoryScreen) sessionLine(sess Session) string {
	title := s.titles[sess.SetID]
	if title == "" {
		title = "set " + sess.SetID
	}
	d := sess.Ended.Sub(sess.Started).Round(time.Second)
	line := fmt.Sprintf("%s  %-5s  %s  %d:%02d  %d events",
		sess.Started.Local().Format("Jan 02 15:04"), sess.Kind, title,
		int(d.Minutes()), int(d.Seconds())%60, len(sess.Events))
	if sess.Score != nil {
		line += fmt.Sprintf("  score %d", *sess.Score)
	}
	return line
}

func (s *HistoryScreen) renderStats(cw int) string {
	var parts []string
	for _, st := range s.stats {
		part := fmt.Sprintf("%s: %d", st.Kind, st.Sessions)
		if st.AvgScore != nil {
			part += fmt.Sprintf(" (avg %.0f)", *st.AvgScore)
		}
		parts = append(parts, part)
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Foreground(theme.TextDim).
		Render(strings.Join(parts, "  ·  "))
}
