// Package progress renders the harvest's live single-line status
// display. The line is overwritten in place on every render; per-error
// detail is never printed, only the error counter moves, so the line
// stays intact.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/custodia-labs/clharvest/internal/core/domain"
)

// currentItemWidth caps the displayed current-item text.
const currentItemWidth = 25

// Reporter writes the status line.
type Reporter struct {
	w     io.Writer
	width int

	muted lipgloss.Style
	alert lipgloss.Style
}

// NewReporter creates a reporter writing to w. When w is a terminal the
// line is clipped to the terminal width.
func NewReporter(w io.Writer) *Reporter {
	r := &Reporter{
		w:     w,
		muted: lipgloss.NewStyle().Faint(true),
		alert: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil {
			r.width = width
		}
	}
	return r
}

// Render overwrites the status line with the snapshot's counters.
func (r *Reporter) Render(s domain.StatsSnapshot) {
	errors := fmt.Sprintf("errors %d", s.Errors)
	if s.Errors > 0 {
		errors = r.alert.Render(errors)
	}

	line := fmt.Sprintf(
		"files: new %d, modified %d, unchanged %d. repos: new %d, modified %d, unchanged %d. %s. %s %s",
		s.FilesNew, s.FilesModified, s.FilesUnchanged,
		s.ReposNew, s.ReposModified, s.ReposUnchanged,
		errors,
		r.muted.Render("current:"),
		truncate(s.Current, currentItemWidth),
	)
	if r.width > 0 && lipgloss.Width(line) > r.width {
		line = lipgloss.NewStyle().MaxWidth(r.width).Render(line)
	}

	fmt.Fprint(r.w, "\r\x1b[K"+line)
}

// Finish renders the final counters and the completion message.
func (r *Reporter) Finish(s domain.StatsSnapshot) {
	r.Render(s)
	fmt.Fprint(r.w, "\n\ndone.\n")
}

// truncate clips s to at most n characters.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
