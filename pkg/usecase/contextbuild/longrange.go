package contextbuild

import (
	"strings"

	"github.com/m-mizutani/recall/pkg/model"
)

// buildLongRange renders the externally produced day summaries, oldest
// first. Trimming drops the oldest day first and never removes the
// last remaining day.
func buildLongRange(days []model.DaySummary, budget int, estimate TokenEstimator) model.ContextLayer {
	if len(days) == 0 {
		return model.ContextLayer{Name: model.LayerLongRange}
	}

	content := renderDays(days)
	trimmed := false
	for estimate(content) > budget && len(days) > 1 {
		days = days[1:]
		content = renderDays(days)
		trimmed = true
	}

	return model.ContextLayer{
		Name:       model.LayerLongRange,
		Content:    content,
		TokenCount: estimate(content),
		ItemCount:  len(days),
		Trimmed:    trimmed,
	}
}

func renderDays(days []model.DaySummary) string {
	var b strings.Builder
	for _, d := range days {
		b.WriteString(d.Date)
		b.WriteString(": ")
		b.WriteString(d.Content)
		if len(d.Topics) > 0 {
			b.WriteString(" (")
			b.WriteString(strings.Join(d.Topics, ", "))
			b.WriteString(")")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
