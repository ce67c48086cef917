package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"shoplist/internal/chat"
)

var (
	styleHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#5A4FCF", Dark: "#A29BFE"})
	styleMeta   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#6B6B6B", Dark: "#8A8A8A"})
	styleButton = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#0B6E4F", Dark: "#55EFC4"})
	styleAlert  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#B00020", Dark: "#FF7675"})
	styleNotice = lipgloss.NewStyle().Italic(true)
)

// plainText strips MarkdownV2 markup: escapes are resolved and unescaped '*' and '_'
// markers dropped.
func plainText(msg chat.Message) string {
	if msg.Format != chat.FormatMarkdownV2 {
		return msg.Text
	}
	var b strings.Builder
	rs := []rune(msg.Text)
	for i := 0; i < len(rs); i++ {
		switch r := rs[i]; {
		case r == '\\' && i+1 < len(rs):
			i++
			b.WriteRune(rs[i])
		case r == '*' || r == '_':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// buttonRows numbers buttons across rows, one line per row, cut to width.
func buttonRows(rows [][]chat.Button, width int) []string {
	var out []string
	n := 0
	for _, row := range rows {
		parts := make([]string, 0, len(row))
		for _, b := range row {
			n++
			parts = append(parts, fmt.Sprintf("[%d] %s", n, b.Label))
		}
		line := "  " + strings.Join(parts, "  ")
		if width > 0 {
			line = xansi.Truncate(line, width, "…")
		}
		out = append(out, styleButton.Render(line))
	}
	return out
}

func renderEntry(e Entry, width int) string {
	head := fmt.Sprintf("#%d %s", e.ID, e.From)
	if e.Edited {
		head += styleMeta.Render(" (edited)")
	}
	lines := []string{styleHeader.Render(head)}
	for _, l := range strings.Split(plainText(e.Message), "\n") {
		lines = append(lines, "  "+l)
	}
	lines = append(lines, buttonRows(e.Message.Buttons, width)...)
	return strings.Join(lines, "\n")
}

func renderTranscript(entries []Entry, width int) string {
	blocks := make([]string, 0, len(entries))
	for _, e := range entries {
		blocks = append(blocks, renderEntry(e, width))
	}
	return strings.Join(blocks, "\n\n")
}

func renderNotice(n Notice) string {
	if n.Alert {
		return styleAlert.Render("⚠ " + n.Text)
	}
	return styleNotice.Render(n.Text)
}
