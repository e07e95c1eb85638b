// Package screentest drives screens against an in-process mock backend.
package screentest

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyhall/internal/api"
	"github.com/abhisek/studyhall/internal/auth"
	"github.com/abhisek/studyhall/internal/logging"
	"github.com/abhisek/studyhall/internal/mockbackend"
	"github.com/abhisek/studyhall/internal/router"
	"github.com/abhisek/studyhall/internal/screen"
)

// Env is a running mock backend plus screen dependencies pointed at it.
type Env struct {
	Deps   screen.Deps
	Server *mockbackend.Server
	Log    *logging.TestLogger
}

// New starts a mock backend and returns deps for a signed-out user.
func New(tb testing.TB, opts mockbackend.Options) *Env {
	tb.Helper()
	srv := mockbackend.New(opts)
	hs := httptest.NewServer(srv.Handler())
	tb.Cleanup(hs.Close)

	log := logging.NewTestLogger()
	manager := auth.NewManager(filepath.Join(tb.TempDir(), "credentials.json"))
	client, err := api.New(api.Options{BaseURL: hs.URL, Credentials: manager, Logger: log.Logger})
	if err != nil {
		tb.Fatalf("api client: %v", err)
	}
	return &Env{
		Deps:   screen.Deps{Client: client, Auth: manager, Logger: log.Logger},
		Server: srv,
		Log:    log,
	}
}

// LoggedIn starts a mock backend and signs in as the demo user.
func LoggedIn(tb testing.TB, opts mockbackend.Options) *Env {
	tb.Helper()
	env := New(tb, opts)
	if _, err := env.Deps.Auth.SignIn(context.Background(), env.Deps.Client, mockbackend.DemoEmail, mockbackend.DemoPassword); err != nil {
		tb.Fatalf("sign in: %v", err)
	}
	return env
}

// Sets returns the demo user's study sets.
func (e *Env) Sets(tb testing.TB) []api.StudySet {
	tb.Helper()
	sets, err := e.Deps.Client.StudySets(context.Background())
	if err != nil {
		tb.Fatalf("study sets: %v", err)
	}
	return sets
}

// Run executes cmd and everything it leads to, feeding messages back into
// s until nothing is left. Widget-internal messages (spinner ticks, cursor
// blinks) are dropped so the loop terminates.
// Navigation and auth messages are not fed back; they are returned in
// order for the test to inspect.
func Run(s screen.Screen, cmd tea.Cmd) (screen.Screen, []tea.Msg) {
	var out []tea.Msg
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case router.PushScreenMsg, router.PopScreenMsg, router.ReplaceScreenMsg, router.ResetScreenMsg, screen.AuthRequiredMsg:
			out = append(out, msg)
		default:
			if isWidgetMsg(msg) {
				continue
			}
			var next tea.Cmd
			s, next = s.Update(msg)
			queue = append(queue, next)
		}
	}
	return s, out
}

func isWidgetMsg(msg tea.Msg) bool {
	t := reflect.TypeOf(msg)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return strings.HasPrefix(t.PkgPath(), "charm.land/bubbles/")
}

// Press sends one key to s and runs the resulting commands.
func Press(s screen.Screen, key string) (screen.Screen, []tea.Msg) {
	s, cmd := s.Update(Key(key))
	return Run(s, cmd)
}

// Key builds a key press for the given key name or printable text.
func Key(key string) tea.KeyPressMsg {
	switch key {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case "space":
		return tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "left":
		return tea.KeyPressMsg{Code: tea.KeyLeft}
	case "right":
		return tea.KeyPressMsg{Code: tea.KeyRight}
	case "ctrl+r":
		return tea.KeyPressMsg{Code: 'r', Mod: tea.ModCtrl}
	case "ctrl+s":
		return tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl}
	}
	r := []rune(key)[0]
	return tea.KeyPressMsg{Code: r, Text: key}
}

// Type sends each rune of text as a key press.
func Type(s screen.Screen, text string) screen.Screen {
	for _, r := range text {
		s, _ = s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	return s
}
