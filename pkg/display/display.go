// Package display writes user-facing terminal output. Markdown is rendered
// with glamour when the output is a terminal and written verbatim otherwise.
package display

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// WordWrap is the column markdown is wrapped at.
const WordWrap = 80

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// Display writes to one output stream.
type Display struct {
	out      io.Writer
	tty      bool
	renderer *glamour.TermRenderer
}

// New creates a Display for out. Styling is enabled only when out is a terminal.
func New(out io.Writer) *Display {
	d := &Display{out: out}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		d.tty = true
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(WordWrap),
		)
		if err == nil {
			d.renderer = r
		}
	}
	return d
}

// Writer returns the underlying stream.
func (d *Display) Writer() io.Writer {
	return d.out
}

// IsTerminal reports whether output is styled.
func (d *Display) IsTerminal() bool {
	return d.tty
}

// Render returns md rendered for the terminal, or md itself.
func (d *Display) Render(md string) string {
	if d.renderer == nil {
		return md
	}
	rendered, err := d.renderer.Render(md)
	if err != nil {
		return md
	}
	return rendered
}

// Markdown writes md followed by a newline.
func (d *Display) Markdown(md string) {
	out := d.Render(md)
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	fmt.Fprint(d.out, out)
}

// Title writes a bold heading line.
func (d *Display) Title(s string) {
	fmt.Fprintln(d.out, d.style(titleStyle, s))
}

// Muted writes a dimmed line.
func (d *Display) Muted(s string) {
	fmt.Fprintln(d.out, d.style(mutedStyle, s))
}

// Error writes an error line.
func (d *Display) Error(s string) {
	fmt.Fprintln(d.out, d.style(errorStyle, s))
}

func (d *Display) style(st lipgloss.Style, s string) string {
	if !d.tty {
		return s
	}
	return st.Render(s)
}
