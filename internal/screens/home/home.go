// Package home is the dashboard: study sets, today's reviews, and the
// entry points into every session type.
package home

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/studyhall/internal/api"
	"github.com/abhisek/studyhall/internal/router"
	"github.com/abhisek/studyhall/internal/screen"
	"github.com/abhisek/studyhall/internal/screens/arena"
	"github.com/abhisek/studyhall/internal/screens/generate"
	"github.com/abhisek/studyhall/internal/screens/history"
	"github.com/abhisek/studyhall/internal/screens/login"
	"github.com/abhisek/studyhall/internal/screens/quiz"
	"github.com/abhisek/studyhall/internal/screens/study"
	"github.com/abhisek/studyhall/internal/ui/components"
	"github.com/abhisek/studyhall/internal/ui/layout"
)

// dashboardLoadedMsg carries both dashboard lists, fetched together.
type dashboardLoadedMsg struct {
	Sets []api.StudySet
	Due  []api.DueReview
	Err  error
}

type deleteDoneMsg struct {
	Title string
	Err   error
}

// HomeScreen is the main dashboard of the application.
type HomeScreen struct {
	deps     screen.Deps
	sets     []api.StudySet
	due      map[api.ID]int
	totalDue int
	selected int
	loaded   bool
	loading  bool
	errMsg   string
	notice   string

	confirming bool
	confirm    components.ButtonRow

	// actions is the per-set action menu, nil when closed.
	actions *components.Menu
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps screen.Deps) *HomeScreen {
	return &HomeScreen{deps: deps, due: map[api.ID]int{}}
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.load()
}

// Resume reloads the dashboard when a session screen is popped, since the
// backend will have moved mastery and due counts.
func (h *HomeScreen) Resume() tea.Cmd {
	return h.load()
}

func (h *HomeScreen) Title() string {
	return "Dashboard"
}

// load fetches study sets and today's reviews in parallel.
func (h *HomeScreen) load() tea.Cmd {
	h.loading = true
	client := h.deps.Client
	return func() tea.Msg {
		var msg dashboardLoadedMsg
		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() error {
			sets, err := client.StudySets(ctx)
			msg.Sets = sets
			return err
		})
		g.Go(func() error {
			due, err := client.TodaysReview(ctx)
			msg.Due = due
			return err
		})
		msg.Err = g.Wait()
		return msg
	}
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	if h.actions != nil {
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Choose"},
			{Key: "Enter", Description: "Start"},
			{Key: "Esc", Description: "Close"},
		}
	}
	if h.confirming {
		return []layout.KeyHint{
			{Key: "←→", Description: "Choose"},
			{Key: "Enter", Description: "Confirm"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	if len(h.sets) == 0 {
		return []layout.KeyHint{
			{Key: "G", Description: "Upload notes"},
			{Key: "R", Description: "Refresh"},
			{Key: "H", Description: "History"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Actions"},
		{Key: "S", Description: "Study"},
		{Key: "D", Description: "Due only"},
		{Key: "Q", Description: "Quiz"},
		{Key: "A", Description: "Arena"},
		{Key: "G", Description: "Upload"},
		{Key: "X", Description: "Delete"},
		{Key: "H", Description: "History"},
	}
}

// HandlesEscape keeps Esc inside the action menu and delete confirmation.
func (h *HomeScreen) HandlesEscape() bool {
	return h.confirming || h.actions != nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardLoadedMsg:
		return h.handleLoaded(msg)

	case deleteDoneMsg:
		if msg.Err != nil {
			if cmd := screen.CheckAuth(msg.Err); cmd != nil {
				return h, cmd
			}
			h.errMsg = "Could not delete: " + api.Message(msg.Err)
			return h, nil
		}
		h.notice = fmt.Sprintf("Deleted %q.", msg.Title)
		return h, h.load()

	case tea.KeyMsg:
		if h.confirming {
			return h.handleConfirmKey(msg)
		}
		if h.actions != nil {
			return h.handleActionKey(msg)
		}
		return h.handleKey(msg)
	}
	return h, nil
}

func (h *HomeScreen) handleLoaded(msg dashboardLoadedMsg) (screen.Screen, tea.Cmd) {
	h.loading = false
	if msg.Err != nil {
		if cmd := screen.CheckAuth(msg.Err); cmd != nil {
			return h, cmd
		}
		h.deps.Logger.Warn(context.Background(), "dashboard load failed", zap.Error(msg.Err))
		h.errMsg = api.Message(msg.Err)
		return h, nil
	}

	h.loaded = true
	h.errMsg = ""
	h.sets = msg.Sets
	h.due = make(map[api.ID]int, len(msg.Due))
	h.totalDue = 0
	for _, d := range msg.Due {
		h.due[d.SetID] = d.DueCardCount
		h.totalDue += d.DueCardCount
	}
	if h.selected >= len(h.sets) {
		h.selected = max(len(h.sets)-1, 0)
	}
	return h, nil
}

func (h *HomeScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if h.selected > 0 {
			h.selected--
		}
		return h, nil
	case "down", "j":
		if h.selected < len(h.sets)-1 {
			h.selected++
		}
		return h, nil
	case "r":
		h.notice = ""
		return h, h.load()
	case "g":
		return h, push(generate.New(h.deps))
	case "h":
		return h, push(history.New(h.deps))
	case "L":
		return h, h.logout()
	}

	set, ok := h.current()
	if !ok {
		return h, nil
	}
	h.notice = ""
	switch msg.String() {
	case "enter":
		menu := h.actionMenu(set)
		h.actions = &menu
		return h, nil
	case "s":
		return h, push(study.New(h.deps, set, api.ReviewAll))
	case "d":
		return h, push(study.New(h.deps, set, api.ReviewDue))
	case "q":
		return h, push(quiz.New(h.deps, set))
	case "a":
		return h, push(arena.New(h.deps, set))
	case "x", "delete":
		h.askDelete(set)
		return h, nil
	}
	return h, nil
}

// actionMenu lists what can be done with set. Due-only review is disabled
// when nothing is due.
func (h *HomeScreen) actionMenu(set api.StudySet) components.Menu {
	due := h.due[set.ID]
	dueDetail := "nothing due"
	if due > 0 {
		dueDetail = fmt.Sprintf("%d card%s", due, plural(due))
	}
	return components.NewMenu([]components.MenuItem{
		{Label: "Study all cards", Detail: fmt.Sprintf("%d cards", set.CardCount), Action: func() tea.Cmd {
			return push(study.New(h.deps, set, api.ReviewAll))
		}},
		{Label: "Review due cards", Detail: dueDetail, Disabled: due == 0, Action: func() tea.Cmd {
			return push(study.New(h.deps, set, api.ReviewDue))
		}},
		{Label: "Take the quiz", Action: func() tea.Cmd {
			return push(quiz.New(h.deps, set))
		}},
		{Label: "Arena challenge", Action: func() tea.Cmd {
			return push(arena.New(h.deps, set))
		}},
		{Label: "Delete set", Action: func() tea.Cmd {
			h.askDelete(set)
			return nil
		}},
	})
}

func (h *HomeScreen) handleActionKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if msg.String() == "esc" {
		h.actions = nil
		return h, nil
	}
	menu, cmd := h.actions.Update(msg)
	if msg.String() == "enter" {
		if _, ok := menu.SelectedItem(); ok {
			h.actions = nil
			return h, cmd
		}
	}
	h.actions = &menu
	return h, cmd
}

func (h *HomeScreen) askDelete(set api.StudySet) {
	h.confirming = true
	h.confirm = components.NewButtonRow(
		components.NewButton("Cancel", true, func() tea.Cmd { return h.cancelDelete() }),
		components.NewButton("Delete", false, func() tea.Cmd { return h.deleteSet(set) }),
	)
}

func (h *HomeScreen) handleConfirmKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc", "n":
		return h, h.cancelDelete()
	case "y":
		if set, ok := h.current(); ok {
			return h, h.deleteSet(set)
		}
	}
	var cmd tea.Cmd
	h.confirm, cmd = h.confirm.Update(msg)
	return h, cmd
}

func (h *HomeScreen) cancelDelete() tea.Cmd {
	h.confirming = false
	return nil
}

func (h *HomeScreen) deleteSet(set api.StudySet) tea.Cmd {
	h.confirming = false
	client := h.deps.Client
	return func() tea.Msg {
		err := client.DeleteStudySet(context.Background(), set.ID)
		return deleteDoneMsg{Title: set.Title, Err: err}
	}
}

func (h *HomeScreen) logout() tea.Cmd {
	if err := h.deps.Auth.Logout(); err != nil {
		h.errMsg = "Could not log out: " + err.Error()
		return nil
	}
	deps := h.deps
	next := login.New(deps, "You have been logged out.", func() screen.Screen { return New(deps) })
	return func() tea.Msg { return router.ResetScreenMsg{Screen: next} }
}

func (h *HomeScreen) current() (api.StudySet, bool) {
	if h.selected < 0 || h.selected >= len(h.sets) {
		return api.StudySet{}, false
	}
	return h.sets[h.selected], true
}

func push(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
}
