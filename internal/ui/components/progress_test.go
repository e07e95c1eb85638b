package components

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/ui/theme"
)

func TestStepBar(t *testing.T) {
	bar := NewStepBar("Card", 1, 4, 40)
	if bar.Label != "Card 2/4" {
		t.Errorf("label = %q", bar.Label)
	}
	if bar.Fraction != 0.25 {
		t.Errorf("fraction = %v, want 0.25", bar.Fraction)
	}
	if got := bar.Filled(20); got != 5 {
		t.Errorf("filled = %d, want 5", got)
	}
	if !strings.Contains(bar.View(), "Card 2/4") {
		t.Error("label missing from view")
	}
}

func TestStepBar_ClampsIndex(t *testing.T) {
	bar := NewStepBar("Question", 7, 3, 40)
	if bar.Label != "Question 3/3" {
		t.Errorf("label = %q", bar.Label)
	}
	empty := NewStepBar("Question", 0, 0, 40)
	if empty.Label != "Question 1/1" || empty.Fraction != 0 {
		t.Errorf("empty bar = %+v", empty)
	}
}

func TestScoreBar_FillFollowsScore(t *testing.T) {
	tests := []struct {
		score float64
		want  any
	}{
		{92, theme.Success},
		{65, theme.Warning},
		{20, theme.Error},
		{140, theme.Success},
	}
	for _, tt := range tests {
		bar := NewScoreBar("mastery", tt.score, 40)
		if bar.Fill != tt.want {
			t.Errorf("score %v: fill = %v, want %v", tt.score, bar.Fill, tt.want)
		}
		if bar.Fraction > 1 {
			t.Errorf("score %v: fraction = %v", tt.score, bar.Fraction)
		}
	}
	if !strings.Contains(NewScoreBar("mastery", 65, 40).View(), "65%") {
		t.Error("percent missing from view")
	}
}

func TestProgressBar_FitsWidth(t *testing.T) {
	bar := NewScoreBar("mastery", 50, 40)
	if w := lipgloss.Width(bar.View()); w != 40 {
		t.Errorf("width = %d, want 40", w)
	}
	narrow := NewScoreBar("mastery", 50, 5)
	if got := narrow.Filled(minBarWidth); got != 2 {
		t.Errorf("narrow filled = %d, want 2", got)
	}
}
