package format

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Markdowner is implemented by values that have a markdown rendering.
type Markdowner interface {
	Markdown() string
}

// WriteMarkdown renders md for the terminal, wrapped at width.
func WriteMarkdown(w io.Writer, md string, width int) error {
	out, err := RenderMarkdown(md, width)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

func RenderMarkdown(md string, width int) (string, error) {
	md = strings.TrimSpace(md)
	if md == "" {
		return "", nil
	}
	if width < 10 {
		width = 10
	}
	// A fixed style; WithAutoStyle can block on terminal queries.
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(markdownStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	out, err := r.Render(md)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}

func markdownStyle() string {
	if termenv.EnvNoColor() {
		return "notty"
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("SHOPLIST_MD_STYLE"))) {
	case "light":
		return "light"
	case "dark":
		return "dark"
	case "notty", "ascii":
		return "notty"
	}
	// COLORFGBG is often "fg;bg" (e.g. "15;0" => dark bg).
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			if bg >= 7 {
				return "light"
			}
			return "dark"
		}
	}
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}
