package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/ui/theme"
)

const bannerArt = `
 ┏━┓╺┳╸╻ ╻╺┳┓╻ ╻╻ ╻┏━┓╻  ╻
 ┗━┓ ┃ ┃ ┃ ┃┃┗┳┛┣━┫┣━┫┃  ┃
 ┗━┛ ╹ ┗━┛╺┻┛ ╹ ╹ ╹╹ ╹┗━╸┗━╸`

const bannerCompact = "s t u d y h a l l"

// RenderBanner returns the studyhall banner styled in the primary color.
// Uses a compact fallback for terminals narrower than 40 columns.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 40 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
