package teaui

import (
	"strconv"
	"strings"

	"tableflip.dev/readlog/pkg/book"
	"tableflip.dev/readlog/pkg/tui/theme"
)

// pickerKey maps a key press to a new rating. Digits pick directly, arrows
// step by one.
func pickerKey(key string, current int) (int, bool) {
	switch key {
	case "left", "h", "-":
		return book.ClampRating(current - 1), true
	case "right", "l", "+":
		return book.ClampRating(current + 1), true
	case "home":
		return book.MinRating, true
	case "end":
		return book.MaxRating, true
	}
	if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
		return int(key[0] - '0'), true
	}
	return current, false
}

func renderPicker(th theme.PickerTheme, label string, value int) string {
	var b strings.Builder
	b.WriteString(th.Prompt.Render(label + ":"))
	for r := book.MinRating; r <= book.MaxRating; r++ {
		b.WriteString(" ")
		opt := " " + strconv.Itoa(r) + " "
		if r == value {
			b.WriteString(th.Selected.Render(opt))
		} else {
			b.WriteString(th.Option.Foreground(th.Tint(r, book.MaxRating)).Render(opt))
		}
	}
	return b.String()
}
