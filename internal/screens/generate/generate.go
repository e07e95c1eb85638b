// Package generate uploads a notes PDF to build a new study set.
package generate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"charm.land/bubbles/v2/spinner"
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

type generatedMsg struct {
	set *api.StudySet
	err error
}

// GenerateScreen asks for a file path and uploads it.
type GenerateScreen struct {
	deps    screen.Deps
	input   components.TextInput
	spinner components.Spinner

	ctx    context.Context
	cancel context.CancelFunc

	uploading bool
	created   *api.StudySet
	errMsg    string
}

var _ screen.Screen = (*GenerateScreen)(nil)
var _ screen.KeyHintProvider = (*GenerateScreen)(nil)
var _ screen.Closer = (*GenerateScreen)(nil)

// New creates the upload screen.
func New(deps screen.Deps) *GenerateScreen {
	ctx, cancel := context.WithCancel(context.Background())
	return &GenerateScreen{
		deps:    deps,
		input:   components.NewTextInput("Notes PDF", "~/notes/chapter4.pdf", 1024),
		spinner: components.NewSpinner("Generating study material. This can take a minute..."),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (g *GenerateScreen) Init() tea.Cmd {
	return g.input.Init()
}

// Close abandons an upload in flight.
func (g *GenerateScreen) Close() {
	g.cancel()
}

func (g *GenerateScreen) Title() string {
	return "New Study Set"
}

func (g *GenerateScreen) KeyHints() []layout.KeyHint {
	switch {
	case g.uploading:
		return []layout.KeyHint{{Key: "Esc", Description: "Cancel"}}
	case g.created != nil:
		return []layout.KeyHint{{Key: "Enter", Description: "Done"}}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Upload"},
		{Key: "Esc", Description: "Back"},
	}
}

func (g *GenerateScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case generatedMsg:
		g.uploading = false
		if g.ctx.Err() != nil {
			return g, nil
		}
		if msg.err != nil {
			if cmd := screen.CheckAuth(msg.err); cmd != nil {
				return g, cmd
			}
			g.errMsg = api.Message(msg.err)
			return g, nil
		}
		g.created = msg.set
		return g, nil

	case spinner.TickMsg:
		if !g.uploading {
			return g, nil
		}
		var cmd tea.Cmd
		g.spinner, cmd = g.spinner.Update(msg)
		return g, cmd

	case tea.KeyMsg:
		if g.uploading {
			return g, nil
		}
		if g.created != nil {
			if msg.String() == "enter" {
				return g, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return g, nil
		}
		if msg.String() == "enter" {
			return g, g.submit()
		}
	}

	if g.uploading || g.created != nil {
		return g, nil
	}
	var cmd tea.Cmd
	g.input, cmd = g.input.Update(msg)
	return g, cmd
}

func (g *GenerateScreen) submit() tea.Cmd {
	path, err := ExpandPath(g.input.Value())
	if err != nil {
		g.errMsg = err.Error()
		return nil
	}
	info, err := os.Stat(path)
	switch {
	case err != nil:
		g.errMsg = fmt.Sprintf("Cannot read %s: %v", path, err)
		return nil
	case info.IsDir():
		g.errMsg = path + " is a directory"
		return nil
	}

	g.errMsg = ""
	g.uploading = true
	ctx, client, logger := g.ctx, g.deps.Client, g.deps.Logger
	upload := func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return generatedMsg{err: err}
		}
		defer f.Close()
		set, err := client.Generate(ctx, filepath.Base(path), f)
		if err != nil && logger != nil {
			logger.Warn(ctx, "generate failed", zap.String("path", path), zap.Error(err))
		}
		return generatedMsg{set: set, err: err}
	}
	return tea.Batch(upload, g.spinner.Tick())
}

// ExpandPath trims raw and expands a leading ~ to the home directory.
func ExpandPath(raw string) (string, error) {
	path := strings.TrimSpace(raw)
	path = strings.Trim(path, `"'`)
	if path == "" {
		return "", fmt.Errorf("enter the path of a PDF file")
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Clean(path), nil
}

func (g *GenerateScreen) View(width, height int) string {
	if g.uploading {
		return g.spinner.View(width, height)
	}
	cw := components.ContentWidth(width)

	var b strings.Builder
	if g.created != nil {
		b.WriteString(theme.Correct.Render("Study set created!"))
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(g.created.Title))
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render(fmt.Sprintf("%d flashcards ready to study", g.created.CardCount)))
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Render("Press Enter to return home."))
	} else {
		b.WriteString(theme.Hint.Render("Upload lecture notes as a PDF and get flashcards, a quiz and an arena challenge."))
		b.WriteString("\n\n")
		b.WriteString(g.input.View())
		if g.errMsg != "" {
			b.WriteString("\n\n")
			b.WriteString(theme.ErrorText.Width(cw).Render(g.errMsg))
		}
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Width(cw).Render(b.String()))
}
