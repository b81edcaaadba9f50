package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/foxseedlab/zumka/internal/session"
)

// Printer renders transcript lines for a terminal. Colors are dropped when w
// is not a TTY.
type Printer struct {
	mu     sync.Mutex
	w      io.Writer
	styles map[string]lipgloss.Style
	text   lipgloss.Style
	label  lipgloss.Style
}

func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	label := r.NewStyle().Bold(true)
	return &Printer{
		w: w,
		styles: map[string]lipgloss.Style{
			session.EventPartial:         label.Foreground(lipgloss.Color("#B58900")).Faint(true),
			session.EventFinal:           label.Foreground(lipgloss.Color("#859900")),
			session.EventFinalRefinement: label.Foreground(lipgloss.Color("#268BD2")),
		},
		text:  r.NewStyle(),
		label: label,
	}
}

func (p *Printer) PrintResult(eventType, text string) {
	style, ok := p.styles[eventType]
	if !ok {
		style = p.label
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s %s\n", style.Render("["+eventType+"]"), p.text.Render(text))
}
