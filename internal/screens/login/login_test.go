package login

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyhall/internal/mockbackend"
	"github.com/abhisek/studyhall/internal/router"
	"github.com/abhisek/studyhall/internal/screen"
	"github.com/abhisek/studyhall/internal/screens/screentest"
	"github.com/abhisek/studyhall/internal/screens/summary"
)

// nextScreen is any screen that marks a successful hand-off.
func nextScreen() screen.Screen {
	return summary.New(summary.Summary{Heading: "signed in"})
}

func fill(s screen.Screen, email, password string) screen.Screen {
	s = screentest.Type(s, email)
	s, _ = screentest.Press(s, "tab")
	return screentest.Type(s, password)
}

func resetTarget(t *testing.T, msgs []tea.Msg) screen.Screen {
	t.Helper()
	require.Len(t, msgs, 1)
	r, ok := msgs[0].(router.ResetScreenMsg)
	require.True(t, ok, "expected ResetScreenMsg, got %T", msgs[0])
	return r.Screen
}

func TestLoginScreen_SignsIn(t *testing.T) {
	env := screentest.New(t, mockbackend.Options{})
	s := fill(New(env.Deps, "", nextScreen), mockbackend.DemoEmail, mockbackend.DemoPassword)

	_, msgs := screentest.Press(s, "enter")
	assert.IsType(t, &summary.SummaryScreen{}, resetTarget(t, msgs))

	cred, ok := env.Deps.Auth.Current()
	require.True(t, ok)
	assert.Equal(t, mockbackend.DemoEmail, cred.Email)
}

func TestLoginScreen_WrongPassword(t *testing.T) {
	env := screentest.New(t, mockbackend.Options{})
	s := fill(New(env.Deps, "", nextScreen), mockbackend.DemoEmail, "wrong")

	got, msgs := screentest.Press(s, "enter")
	assert.Empty(t, msgs)
	l := got.(*LoginScreen)
	assert.Equal(t, "Incorrect email or password", l.errMsg)
	assert.False(t, l.pending)

	_, ok := env.Deps.Auth.Current()
	assert.False(t, ok)
}

func TestLoginScreen_RequiresBothFields(t *testing.T) {
	env := screentest.New(t, mockbackend.Options{})
	s := screentest.Type(New(env.Deps, "", nextScreen), mockbackend.DemoEmail)
	s, _ = screentest.Press(s, "tab")

	got, msgs := screentest.Press(s, "enter")
	assert.Empty(t, msgs)
	assert.Contains(t, got.(*LoginScreen).errMsg, "required")
}

func TestLoginScreen_RegisterThenSignIn(t *testing.T) {
	env := screentest.New(t, mockbackend.Options{})
	s, _ := screentest.Press(New(env.Deps, "", nextScreen), "ctrl+r")
	assert.Equal(t, "Create account", s.Title())

	s = fill(s, "new@test.com", "hunter22")
	_, msgs := screentest.Press(s, "enter")
	resetTarget(t, msgs)

	cred, ok := env.Deps.Auth.Current()
	require.True(t, ok)
	assert.Equal(t, "new@test.com", cred.Email)
}

func TestLoginScreen_RegisterDuplicate(t *testing.T) {
	env := screentest.New(t, mockbackend.Options{})
	s, _ := screentest.Press(New(env.Deps, "", nextScreen), "ctrl+r")
	s = fill(s, mockbackend.DemoEmail, "whatever")

	got, msgs := screentest.Press(s, "enter")
	assert.Empty(t, msgs)
	assert.Equal(t, "Email already registered", got.(*LoginScreen).errMsg)
}

func TestLoginScreen_ShowsNotice(t *testing.T) {
	env := screentest.New(t, mockbackend.Options{})
	s := New(env.Deps, "Your session expired. Please log in again.", nextScreen)
	if !strings.Contains(s.View(100, 30), "session expired") {
		t.Error("expected notice in view")
	}
}
