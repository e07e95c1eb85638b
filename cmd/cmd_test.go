package cmd

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyhall/internal/api"
	"github.com/abhisek/studyhall/internal/auth"
	"github.com/abhisek/studyhall/internal/mockbackend"
)

type cli struct {
	t     *testing.T
	url   string
	dir   string
	creds string
}

// newCLI points every command at a fresh mock backend and temp state.
func newCLI(t *testing.T) *cli {
	t.Helper()
	hs := httptest.NewServer(mockbackend.New(mockbackend.Options{}).Handler())
	t.Cleanup(hs.Close)

	dir := t.TempDir()
	creds := filepath.Join(dir, "credentials.json")
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("STUDYHALL_AUTH_CREDENTIALS_FILE", creds)
	return &cli{t: t, url: hs.URL, dir: dir, creds: creds}
}

func (c *cli) run(stdin string, args ...string) (string, error) {
	c.t.Helper()
	var out bytes.Buffer
	rootCmd.SetArgs(append(args,
		"--api-url", c.url,
		"--db", filepath.Join(c.dir, "studyhall.db"),
		"--log-file", filepath.Join(c.dir, "studyhall.log"),
	))
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (c *cli) login() {
	c.t.Helper()
	_, err := c.run("", "login", "--email", mockbackend.DemoEmail, "--password", mockbackend.DemoPassword)
	require.NoError(c.t, err)
}

// firstSet reads the demo user's first set through the stored credential.
func (c *cli) firstSet() api.StudySet {
	c.t.Helper()
	m := auth.NewManager(c.creds)
	require.NoError(c.t, m.Init())
	client, err := api.New(api.Options{BaseURL: c.url, Credentials: m})
	require.NoError(c.t, err)
	sets, err := client.StudySets(context.Background())
	require.NoError(c.t, err)
	require.NotEmpty(c.t, sets)
	return sets[0]
}

func TestLoginWhoamiLogout(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("", "whoami")
	assert.ErrorIs(t, err, auth.ErrNoCredential)

	c.login()
	out, err := c.run("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, mockbackend.DemoEmail)
	assert.Contains(t, out, "Token expires")

	_, err = c.run("", "logout")
	require.NoError(t, err)
	_, err = c.run("", "whoami")
	assert.Error(t, err)
}

func TestLoginWrongPassword(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("", "login", "--email", mockbackend.DemoEmail, "--password", "nope")
	require.Error(t, err)
	assert.True(t, api.IsKind(err, api.KindUnauthenticated), "err = %v", err)
}

func TestSetsList(t *testing.T) {
	c := newCLI(t)
	c.login()

	out, err := c.run("", "sets", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Biology Chapter 4")
	assert.Contains(t, out, "3 sets")
}

func TestStudyCommandRecordsHistory(t *testing.T) {
	c := newCLI(t)
	c.login()
	set := c.firstSet()

	// reveal+easy, skip, reveal+again
	out, err := c.run("\n3\ns\n\n1\n", "study", set.ID.String())
	require.NoError(t, err)
	assert.Contains(t, out, "powerhouse of the cell")
	assert.Contains(t, out, "Reviewed 2 cards")
	assert.Contains(t, out, "1 again, 0 good, 1 easy, 1 skipped")

	out, err = c.run("", "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "study")
	assert.Contains(t, out, set.ID.String())

	out, err = c.run("", "history", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "study")
}

func TestQuizCommand(t *testing.T) {
	c := newCLI(t)
	c.login()
	set := c.firstSet()

	out, err := c.run("2\n1\n1\n", "quiz", set.ID.String())
	require.NoError(t, err)
	assert.Contains(t, out, "Not quite. The answer is Cytoplasm.")
	assert.Contains(t, out, "Score: 67% (2 of 3 correct)")
}

func TestArenaCommand(t *testing.T) {
	c := newCLI(t)
	c.login()
	set := c.firstSet()

	out, err := c.run("The krebs cycle halts and isocitrate accumulates.\n\n", "arena", set.ID.String())
	require.NoError(t, err)
	assert.Contains(t, out, "Score: ")
	assert.Contains(t, out, "Ideal response:")
}
