package theme

import (
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// Theme centralizes Lip Gloss styles for the Bubble Tea UI.
type Theme struct {
	Tabs   TabsTheme
	Footer FooterTheme
	Detail DetailTheme
	Picker PickerTheme
}

// TabsTheme styles the screen switcher at the top.
type TabsTheme struct {
	Active   lipgloss.Style
	Inactive lipgloss.Style
	Gap      lipgloss.Style
}

// FooterTheme groups styles used by the bottom status and help lines.
type FooterTheme struct {
	Help   lipgloss.Style
	Status lipgloss.Style
	Error  lipgloss.Style
}

// DetailTheme styles the book detail screen.
type DetailTheme struct {
	Frame lipgloss.Style
	Title lipgloss.Style
	Label lipgloss.Style
	Body  lipgloss.Style
}

// PickerTheme styles the 0-10 rating picker. Options are tinted along a
// scale from Low (0) to High (10).
type PickerTheme struct {
	Selected lipgloss.Style
	Option   lipgloss.Style
	Prompt   lipgloss.Style

	Low  colorful.Color
	High colorful.Color
}

// Tint returns the scale color for rating r out of top.
func (p PickerTheme) Tint(r, top int) colorful.Color {
	if top <= 0 {
		return p.High
	}
	t := float64(r) / float64(top)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return p.Low.BlendHcl(p.High, t).Clamped()
}

// Default returns the built-in theme used across the UI.
func Default() Theme {
	active := lipgloss.NewStyle().
		Foreground(lipgloss.Color("212")).
		Bold(true).
		Underline(true)

	return Theme{
		Tabs: TabsTheme{
			Active:   active,
			Inactive: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Gap:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		},
		Footer: FooterTheme{
			Help:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Status: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		},
		Detail: DetailTheme{
			Frame: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				Padding(1, 2),
			Title: lipgloss.NewStyle().Bold(true),
			Label: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
			Body:  lipgloss.NewStyle(),
		},
		Picker: PickerTheme{
			Selected: lipgloss.NewStyle().
				Foreground(lipgloss.Color("212")).
				Bold(true).
				Reverse(true),
			Option: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Prompt: lipgloss.NewStyle().Bold(true),
			Low:    mustHex("#d75f5f"),
			High:   mustHex("#5fd75f"),
		},
	}
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}
