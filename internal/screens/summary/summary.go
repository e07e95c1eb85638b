// Package summary shows the outcome of a finished session.
package summary

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/router"
	"github.com/abhisek/studyhall/internal/screen"
	"github.com/abhisek/studyhall/internal/ui/layout"
	"github.com/abhisek/studyhall/internal/ui/theme"
)

// Tone colors a stat.
type Tone int

const (
	Neutral Tone = iota
	Good
	Bad
)

// Stat is one labelled figure in the summary.
type Stat struct {
	Label string
	Value string
	Tone  Tone
}

// Summary describes a finished session.
type Summary struct {
	Heading  string
	SetTitle string
	Duration time.Duration
	Stats    []Stat
	// Note is an optional closing line, e.g. a warning about unsaved grades.
	Note string
}

// SummaryScreen displays the session summary.
type SummaryScreen struct {
	summary Summary
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(summary Summary) *SummaryScreen {
	return &SummaryScreen{summary: summary}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Session Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Dashboard"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	center := func(style lipgloss.Style, text string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(text))
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true), sum.Heading))
	b.WriteString("\n")
	if sum.SetTitle != "" {
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Text), sum.SetTitle))
		b.WriteString("\n")
	}
	if sum.Duration > 0 {
		mins := int(sum.Duration.Minutes())
		secs := int(sum.Duration.Seconds()) % 60
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim), fmt.Sprintf("Duration: %d:%02d", mins, secs)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", min(width-8, 40)))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n\n")

	labelWidth := 0
	for _, st := range sum.Stats {
		labelWidth = max(labelWidth, lipgloss.Width(st.Label))
	}
	for _, st := range sum.Stats {
		label := lipgloss.NewStyle().Foreground(theme.TextDim).Width(labelWidth + 2).Render(st.Label)
		value := toneStyle(st.Tone).Render(st.Value)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, label+value))
		b.WriteString("\n")
	}

	if sum.Note != "" {
		b.WriteString("\n")
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Warning), sum.Note))
		b.WriteString("\n")
	}

	return b.String()
}

func toneStyle(t Tone) lipgloss.Style {
	switch t {
	case Good:
		return theme.Correct
	case Bad:
		return theme.Incorrect
	}
	return lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
}
