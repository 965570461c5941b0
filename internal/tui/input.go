package tui

import (
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
)

// maxInputLen is the maximum number of runes allowed in form inputs.
const maxInputLen = 256

// editRune processes a keystroke for inline text editing.
// Handles backspace (rune-aware) and single printable characters.
// Returns the text unchanged for non-printable keys (enter, esc, etc.).
// Input is clamped to maxInputLen runes.
func editRune(text string, key string) string {
	switch key {
	case "backspace":
		if len(text) > 0 {
			runes := []rune(text)
			return string(runes[:len(runes)-1])
		}
		return text
	default:
		if utf8.RuneCountInString(key) == 1 {
			if utf8.RuneCountInString(text) >= maxInputLen {
				return text
			}
			return text + key
		}
		return text
	}
}

// editKey is editRune for a whole key event. Pasted text arrives as a
// single event carrying many runes and is appended up to maxInputLen.
func editKey(text string, msg tea.KeyMsg) string {
	if msg.Type == tea.KeyRunes && len(msg.Runes) > 1 {
		for _, r := range msg.Runes {
			if r == '\n' || r == '\r' {
				continue
			}
			text = editRune(text, string(r))
		}
		return text
	}
	return editRune(text, msg.String())
}

// truncateToHeight limits output to maxLines newline-delimited lines.
// Returns the original string if it fits or maxLines is <= 0.
func truncateToHeight(s string, maxLines int) string {
	if maxLines <= 0 {
		return s
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
			if n >= maxLines {
				return s[:i+1]
			}
		}
	}
	return s
}

// field is a single-line labelled form input.
type field struct {
	label       string
	value       string
	placeholder string
	masked      bool
}

func (f field) edit(msg tea.KeyMsg) field {
	f.value = editKey(f.value, msg)
	return f
}

// render draws the field; a focused field gets the prompt marker and a cursor.
func (f field) render(focused bool) string {
	prompt := "  "
	label := dimStyle.Render(f.label + ": ")
	if focused {
		prompt = inputPromptStyle.Render("> ")
		label = selectedStyle.Render(f.label + ": ")
	}

	shown := f.value
	if f.masked {
		shown = strings.Repeat("•", utf8.RuneCountInString(f.value))
	}
	var body string
	switch {
	case shown == "" && !focused:
		body = inputPlaceholderStyle.Render(f.placeholder)
	case focused:
		body = normalStyle.Render(shown) + accentStyle.Render("█")
	default:
		body = normalStyle.Render(shown)
	}
	return prompt + label + body
}
