package components

import (
	"fmt"
	"strings"

	"github.com/kerbaras/comics/pkg/app/styles"
	"github.com/kerbaras/comics/pkg/services"
)

// ProgressTracker follows a cache warm run.
type ProgressTracker struct {
	last   *services.WarmProgress
	errors []services.WarmProgress
	width  int
}

func NewProgressTracker(width int) *ProgressTracker {
	return &ProgressTracker{width: width}
}

func (p *ProgressTracker) SetWidth(width int) {
	p.width = width
}

func (p *ProgressTracker) Update(progress services.WarmProgress) {
	prog := progress // Copy
	p.last = &prog
	if progress.Error != nil {
		p.errors = append(p.errors, progress)
	}
}

func (p *ProgressTracker) Clear() {
	p.last = nil
	p.errors = nil
}

// HasActive reports whether a run is under way and not finished.
func (p *ProgressTracker) HasActive() bool {
	return p.last != nil && p.last.Done < p.last.Total
}

func (p *ProgressTracker) Failed() int {
	return len(p.errors)
}

func (p *ProgressTracker) View() string {
	if p.last == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.SubtitleStyle.Render("Warming image cache"))
	b.WriteString("\n")

	status := "warming"
	if !p.HasActive() {
		status = "complete"
	}

	percentage := 0.0
	if p.last.Total > 0 {
		percentage = float64(p.last.Done) / float64(p.last.Total) * 100
	}
	b.WriteString(renderProgressBar(p.last.Done, p.last.Total, p.width-4))
	b.WriteString("\n")
	b.WriteString(styles.StatusStyle(status).Render(
		fmt.Sprintf("%s (%d/%d comics - %.0f%%)", status, p.last.Done, p.last.Total, percentage),
	))
	b.WriteString("\n")

	for _, e := range p.errors {
		b.WriteString(styles.StatusError.Render(fmt.Sprintf("Error: %s: %s", e.Slug, e.Error)))
		b.WriteString("\n")
	}

	return b.String()
}

func renderProgressBar(current, total, width int) string {
	if total == 0 || width <= 0 {
		return ""
	}

	filled := int(float64(current) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return styles.ProgressBarStyle.Render(bar)
}
