package screen

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyhall/internal/api"
	"github.com/abhisek/studyhall/internal/auth"
	"github.com/abhisek/studyhall/internal/logging"
	"github.com/abhisek/studyhall/internal/session"
	"github.com/abhisek/studyhall/internal/store"
)

// Deps are the services shared by every screen. Events may be nil when
// the local journal could not be opened.
type Deps struct {
	Client  *api.Client
	Auth    *auth.Manager
	Events  store.EventRepo
	Journal session.Journal
	Logger  *logging.Logger
}

// SessionOptions returns the machine options for a new session.
func (d Deps) SessionOptions() session.Options {
	return session.Options{Journal: d.Journal, Logger: d.Logger}
}

// AuthRequiredMsg asks the app to drop the credential and show the login
// screen.
type AuthRequiredMsg struct{}

// CheckAuth returns a command emitting AuthRequiredMsg when err means the
// backend no longer accepts the credential, and nil otherwise.
func CheckAuth(err error) tea.Cmd {
	if !api.IsKind(err, api.KindUnauthenticated) {
		return nil
	}
	return func() tea.Msg { return AuthRequiredMsg{} }
}

// OpResultMsg carries the Result of a session Op back to the screen that
// issued it.
type OpResultMsg struct {
	Result session.Result
}

// RunOp runs op off the UI goroutine. A nil op yields a nil command.
func RunOp(op session.Op) tea.Cmd {
	if op == nil {
		return nil
	}
	return func() tea.Msg {
		return OpResultMsg{Result: op(context.Background())}
	}
}
