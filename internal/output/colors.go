package output

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// ColorEnabled reports whether w is a terminal that should receive colour.
// NO_COLOR disables colour everywhere.
func ColorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type styles struct {
	stack    lipgloss.Style
	active   lipgloss.Style
	branch   lipgloss.Style
	current  lipgloss.Style
	trunk    lipgloss.Style
	dim      lipgloss.Style
	merged   lipgloss.Style
	upToDate lipgloss.Style
	conflict lipgloss.Style
	warning  lipgloss.Style
	pr       map[string]lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		stack:    r.NewStyle().Bold(true),
		active:   r.NewStyle().Foreground(lipgloss.Color("2")),
		branch:   r.NewStyle().Foreground(lipgloss.Color("6")),
		current:  r.NewStyle().Foreground(lipgloss.Color("6")).Bold(true),
		trunk:    r.NewStyle().Foreground(lipgloss.Color("8")),
		dim:      r.NewStyle().Foreground(lipgloss.Color("8")),
		merged:   r.NewStyle().Foreground(lipgloss.Color("2")),
		upToDate: r.NewStyle().Foreground(lipgloss.Color("8")),
		conflict: r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		warning:  r.NewStyle().Foreground(lipgloss.Color("3")),
		pr: map[string]lipgloss.Style{
			"open":   r.NewStyle().Foreground(lipgloss.Color("2")),
			"merged": r.NewStyle().Foreground(lipgloss.Color("5")),
			"closed": r.NewStyle().Foreground(lipgloss.Color("1")),
		},
	}
}

func newLipglossRenderer(w io.Writer, color bool) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	return r
}
