package agent

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"
)

const defaultRenderWidth = 100

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("36")).
			Padding(0, 1)

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("36"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	dimStyle = lipgloss.NewStyle().Faint(true)
)

// Renderer formats assistant output for the terminal: markdown through
// glamour, panels through lipgloss, with plain-text fallbacks when the
// terminal has no color support.
type Renderer struct {
	markdown *glamour.TermRenderer
	width    int
	plain    bool
}

// NewRenderer builds a renderer for the current terminal.
func NewRenderer(width int) *Renderer {
	if width <= 0 {
		width = defaultRenderWidth
	}

	plain := termenv.EnvColorProfile() == termenv.Ascii

	r := &Renderer{width: width, plain: plain}
	if !plain {
		md, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err == nil {
			r.markdown = md
		}
	}
	return r
}

// Markdown renders markdown text, falling back to wrapped plain text.
func (r *Renderer) Markdown(text string) string {
	if r.markdown != nil {
		if out, err := r.markdown.Render(text); err == nil {
			return strings.TrimRight(out, "\n")
		}
	}
	return wordwrap.String(text, r.width)
}

// Panel wraps content in a titled border.
func (r *Renderer) Panel(title, content string) string {
	wrapped := wordwrap.String(content, r.width-4)
	if r.plain {
		return fmt.Sprintf("== %s ==\n%s", title, wrapped)
	}
	body := panelTitleStyle.Render(title) + "\n" + wrapped
	return panelStyle.Width(r.width).Render(body)
}

// Error formats an error line.
func (r *Renderer) Error(text string) string {
	if r.plain {
		return "error: " + text
	}
	return errorStyle.Render(text)
}

// Dim formats secondary information like tool traces.
func (r *Renderer) Dim(text string) string {
	if r.plain {
		return text
	}
	return dimStyle.Render(text)
}
