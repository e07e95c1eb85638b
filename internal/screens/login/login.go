// Package login is the sign-in and registration screen.
package login

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/studyhall/internal/api"
	"github.com/abhisek/studyhall/internal/router"
	"github.com/abhisek/studyhall/internal/screen"
	"github.com/abhisek/studyhall/internal/ui/components"
	"github.com/abhisek/studyhall/internal/ui/layout"
	"github.com/abhisek/studyhall/internal/ui/theme"
)

type mode int

const (
	modeLogin mode = iota
	modeRegister
)

// loginDoneMsg reports the outcome of a login or register round trip.
type loginDoneMsg struct {
	Err error
}

// LoginScreen collects an email and password and establishes the
// process credential.
type LoginScreen struct {
	deps    screen.Deps
	next    func() screen.Screen
	mode    mode
	email   components.TextInput
	pass    components.TextInput
	focus   int
	pending bool
	notice  string
	errMsg  string
}

var _ screen.Screen = (*LoginScreen)(nil)
var _ screen.KeyHintProvider = (*LoginScreen)(nil)

// New creates a LoginScreen. notice is shown above the form; next builds
// the screen that replaces this one after a successful login.
func New(deps screen.Deps, notice string, next func() screen.Screen) *LoginScreen {
	s := &LoginScreen{
		deps:   deps,
		next:   next,
		email:  components.NewTextInput("Email", "you@example.com", 254),
		pass:   components.NewPasswordInput("Password"),
		notice: notice,
	}
	if cred, ok := deps.Auth.Current(); ok {
		s.email.SetValue(cred.Email)
	}
	return s
}

func (s *LoginScreen) Init() tea.Cmd {
	return s.email.Init()
}

func (s *LoginScreen) Title() string {
	if s.mode == modeRegister {
		return "Create account"
	}
	return "Log in"
}

func (s *LoginScreen) KeyHints() []layout.KeyHint {
	toggle := "Create account"
	if s.mode == modeRegister {
		toggle = "Have an account"
	}
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Submit"},
		{Key: "Ctrl+R", Description: toggle},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		s.pending = false
		if msg.Err != nil {
			s.errMsg = api.Message(msg.Err)
			return s, nil
		}
		next := s.next()
		return s, func() tea.Msg { return router.ResetScreenMsg{Screen: next} }

	case tea.KeyMsg:
		if s.pending {
			return s, nil
		}
		switch msg.String() {
		case "tab", "down", "shift+tab", "up":
			return s, s.toggleFocus()
		case "ctrl+r":
			if s.mode == modeLogin {
				s.mode = modeRegister
			} else {
				s.mode = modeLogin
			}
			s.errMsg = ""
			return s, nil
		case "enter":
			if s.focus == 0 {
				return s, s.toggleFocus()
			}
			return s, s.submit()
		}
	}

	var cmd tea.Cmd
	if s.focus == 0 {
		s.email, cmd = s.email.Update(msg)
	} else {
		s.pass, cmd = s.pass.Update(msg)
	}
	return s, cmd
}

func (s *LoginScreen) toggleFocus() tea.Cmd {
	if s.focus == 0 {
		s.focus = 1
		s.email.Blur()
		return s.pass.Focus()
	}
	s.focus = 0
	s.pass.Blur()
	return s.email.Focus()
}

func (s *LoginScreen) submit() tea.Cmd {
	email := strings.TrimSpace(s.email.Value())
	password := s.pass.Value()
	if email == "" || password == "" {
		s.errMsg = "Email and password are required."
		return nil
	}
	s.errMsg = ""
	s.pending = true

	deps, register := s.deps, s.mode == modeRegister
	return func() tea.Msg {
		ctx := context.Background()
		if register {
			if _, err := deps.Client.Register(ctx, email, password); err != nil {
				return loginDoneMsg{Err: err}
			}
		}
		if _, err := deps.Auth.SignIn(ctx, deps.Client, email, password); err != nil {
			deps.Logger.Info(ctx, "login failed", zap.String("kind", api.KindOf(err).String()))
			return loginDoneMsg{Err: err}
		}
		deps.Logger.Info(ctx, "logged in", zap.Bool("registered", register))
		return loginDoneMsg{}
	}
}

func (s *LoginScreen) View(width, height int) string {
	var b strings.Builder

	heading := "Welcome back"
	if s.mode == modeRegister {
		heading = "Create your account"
	}
	b.WriteString(theme.Title.Render(heading))
	b.WriteString("\n\n")

	if s.notice != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Render(s.notice))
		b.WriteString("\n\n")
	}

	b.WriteString(s.email.View())
	b.WriteString("\n\n")
	b.WriteString(s.pass.View())
	b.WriteString("\n\n")

	switch {
	case s.pending:
		b.WriteString(theme.Hint.Render("Signing in..."))
	case s.errMsg != "":
		b.WriteString(theme.ErrorText.Render(s.errMsg))
	default:
		b.WriteString(theme.Hint.Render("Press Enter to continue"))
	}

	card := theme.Card.Width(min(width-4, 56)).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
