package app

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/studyhall/internal/logging"
	"github.com/abhisek/studyhall/internal/router"
	"github.com/abhisek/studyhall/internal/screen"
	"github.com/abhisek/studyhall/internal/screens/home"
	"github.com/abhisek/studyhall/internal/screens/login"
	"github.com/abhisek/studyhall/internal/screens/welcome"
	"github.com/abhisek/studyhall/internal/ui/layout"
)

// Options holds the dependencies for the TUI.
type Options struct {
	screen.Deps
	// SkipSplash starts directly on the dashboard or login screen.
	SkipSplash bool
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	deps   screen.Deps
	router *router.Router
	width  int
	height int
}

// newAppModel creates the root model, starting on the dashboard when a
// credential is present and on the login screen otherwise.
func newAppModel(opts Options) AppModel {
	deps := opts.Deps
	if deps.Logger == nil {
		deps.Logger = logging.NewNop()
	}
	var first screen.Screen
	if opts.SkipSplash {
		first = startScreen(deps)
	} else {
		first = welcome.New(func() screen.Screen { return startScreen(deps) })
	}
	return AppModel{
		deps:   deps,
		router: router.New(first),
	}
}

func startScreen(deps screen.Deps) screen.Screen {
	if _, ok := deps.Auth.Current(); ok {
		return home.New(deps)
	}
	return loginScreen(deps, "")
}

func loginScreen(deps screen.Deps, notice string) screen.Screen {
	return login.New(deps, notice, func() screen.Screen { return home.New(deps) })
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case screen.AuthRequiredMsg:
		if err := m.deps.Auth.Logout(); err != nil {
			m.deps.Logger.Warn(context.Background(), "logout after rejected credential failed", zap.Error(err))
		}
		next := loginScreen(m.deps, "Your session has expired. Please log in again.")
		return m, func() tea.Msg { return router.ResetScreenMsg{Screen: next} }

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.router.Reset(closedScreen{})
			return m, tea.Quit
		case "esc":
			if h, ok := m.router.Active().(screen.EscapeHandler); ok && h.HandlesEscape() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	user := ""
	if cred, ok := m.deps.Auth.Current(); ok {
		user = cred.Email
	}
	header := layout.RenderHeader(title, user, m.width)

	var footerHints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		footerHints = p.KeyHints()
	}
	if footerHints == nil {
		if m.router.Depth() > 1 {
			footerHints = []layout.KeyHint{
				{Key: "Esc", Description: "Back"},
				{Key: "Ctrl+C", Description: "Quit"},
			}
		} else {
			footerHints = []layout.KeyHint{
				{Key: "↑↓", Description: "Navigate"},
				{Key: "Enter", Description: "Select"},
				{Key: "Ctrl+C", Description: "Quit"},
			}
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// closedScreen stands in for the stack after quit so that every live
// session is closed before the program exits.
type closedScreen struct{}

func (closedScreen) Init() tea.Cmd                           { return nil }
func (closedScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return closedScreen{}, nil }
func (closedScreen) View(int, int) string                    { return "" }
func (closedScreen) Title() string                           { return "" }

// Run starts the Bubble Tea program.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(newAppModel(opts), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
