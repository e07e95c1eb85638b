package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/ui/components"
	"github.com/abhisek/studyhall/internal/ui/theme"
)

func (h *HomeScreen) View(width, height int) string {
	if h.confirming {
		set, _ := h.current()
		return components.Dialog(
			fmt.Sprintf("Delete %q?\nThis removes its cards, quizzes and challenges.", set.Title),
			h.confirm.Buttons, width, height)
	}

	if h.actions != nil {
		set, _ := h.current()
		cw := min(components.ContentWidth(width), 48)
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			components.Panel(set.Title, h.actions.View(), cw, true))
	}

	if !h.loaded {
		text := "Loading your study sets..."
		style := lipgloss.NewStyle().Foreground(theme.TextDim)
		if h.errMsg != "" {
			text = "Could not load the dashboard: " + h.errMsg + "\n\nPress R to retry."
			style = theme.ErrorText
		}
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, style.Render(text))
	}

	cw := components.ContentWidth(width)
	sections := []string{
		renderStatsBar(len(h.sets), h.totalDue, cw),
		components.Panel("STUDY SETS", h.renderSets(cw), cw, true),
	}
	if len(h.due) > 0 {
		sections = append(sections, components.Panel("DUE TODAY", h.renderDue(), cw, false))
	}

	var status string
	switch {
	case h.errMsg != "":
		status = theme.ErrorText.Render(h.errMsg)
	case h.loading:
		status = theme.Hint.Render("Refreshing...")
	case h.notice != "":
		status = lipgloss.NewStyle().Foreground(theme.Success).Render(h.notice)
	}
	if status != "" {
		sections = append(sections, status)
	}

	content := strings.Join(sections, "\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, content)
}

// renderStatsBar renders the dashboard totals in a bordered box matching content width.
func renderStatsBar(sets, due, cw int) string {
	setStyle := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	dueStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	dueText := dimStyle.Render("nothing due today")
	if due > 0 {
		dueText = dueStyle.Render(fmt.Sprintf("%d card%s due today", due, plural(due)))
	}
	stats := setStyle.Render(fmt.Sprintf("%d study set%s", sets, plural(sets))) + dimStyle.Render("  ·  ") + dueText

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw - 2).
		Align(lipgloss.Center).
		Render(stats)
}

func (h *HomeScreen) renderSets(cw int) string {
	if len(h.sets) == 0 {
		return theme.Hint.Render("No study sets yet. Press G to upload your notes.")
	}

	var b strings.Builder
	for i, set := range h.sets {
		prefix := "  "
		style := theme.Unselected
		if i == h.selected {
			prefix = "▸ "
			style = theme.Selected
		}

		meta := fmt.Sprintf("%d cards", set.CardCount)
		if n := h.due[set.ID]; n > 0 {
			meta += fmt.Sprintf(" · %d due", n)
		}
		b.WriteString(style.Render(prefix+set.Title) + "  " +
			lipgloss.NewStyle().Foreground(theme.TextDim).Render(meta))
		b.WriteString("\n")

		if set.MasteryScore != nil {
			bar := components.NewScoreBar("  mastery", *set.MasteryScore, cw-8)
			b.WriteString(bar.View())
		} else {
			b.WriteString(theme.Hint.Render("  not practised yet"))
		}
		if i < len(h.sets)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (h *HomeScreen) renderDue() string {
	var lines []string
	for _, set := range h.sets {
		if n := h.due[set.ID]; n > 0 {
			lines = append(lines, fmt.Sprintf("%s  %s",
				lipgloss.NewStyle().Foreground(theme.Accent).Render(fmt.Sprintf("%3d", n)),
				set.Title))
		}
	}
	return strings.Join(lines, "\n")
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
