package useCases

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Printer пишет человекочитаемые строки для оператора (stdout).
// Логи идут отдельно через slog.
type Printer struct {
	w io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = io.Discard
	}
	return &Printer{w: w}
}

func (p *Printer) Reported(channel, message string) {
	fmt.Fprintf(p.w, "%s channel: %s, reported: %s\n", okStyle.Render("✓"), channel, message)
}

func (p *Printer) Membership(channel, action string) {
	fmt.Fprintf(p.w, "%s channel: %s, %s\n", okStyle.Render("✓"), channel, action)
}

func (p *Printer) Summary(total, succeeded int) {
	failed := total - succeeded
	line := fmt.Sprintf("done: %d processed, %d succeeded", total, succeeded)
	if failed > 0 {
		line += ", " + failStyle.Render(fmt.Sprintf("%d failed", failed))
	}
	fmt.Fprintln(p.w, line)
}
