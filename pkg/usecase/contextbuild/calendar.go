package contextbuild

import (
	"strings"

	"github.com/m-mizutani/recall/pkg/model"
)

// buildCalendar renders events in the forward window. The item cap is
// the only bound; there is no post-hoc trimming.
func buildCalendar(events []model.CalendarEvent, cfg model.ContextConfig, estimate TokenEstimator) model.ContextLayer {
	if len(events) > cfg.CalendarMaxItems {
		events = events[:cfg.CalendarMaxItems]
	}
	if len(events) == 0 {
		return model.ContextLayer{Name: model.LayerCalendar}
	}

	var b strings.Builder
	for _, ev := range events {
		b.WriteString("- ")
		b.WriteString(ev.StartsAt.Format("Mon Jan 2 15:04"))
		b.WriteString(": ")
		b.WriteString(ev.Title)
		if ev.Location != "" {
			b.WriteString(" @ ")
			b.WriteString(ev.Location)
		}
		b.WriteString("\n")
	}
	content := strings.TrimRight(b.String(), "\n")

	return model.ContextLayer{
		Name:       model.LayerCalendar,
		Content:    content,
		TokenCount: estimate(content),
		ItemCount:  len(events),
	}
}
