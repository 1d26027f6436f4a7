package interfaces

import (
	"context"
	"time"

	"github.com/m-mizutani/recall/pkg/model"
)

// Repository defines the document store access the pipeline needs.
// All reads are namespaced by IIN. Read failures surface as empty
// results at call sites; only caller-requested writes propagate.
type Repository interface {
	// ListActiveMemories retrieves the user's active memory records
	ListActiveMemories(ctx context.Context, iin model.IIN) ([]*model.ExistingMemoryRecord, error)

	// ListMessages retrieves the most recent messages of a session in
	// chronological order
	ListMessages(ctx context.Context, iin model.IIN, session model.SessionID, limit int) ([]model.Message, error)

	// CountMessages returns the total message count of a session
	CountMessages(ctx context.Context, iin model.IIN, session model.SessionID) (int, error)

	// ListEvents retrieves events starting within [from, to), ordered
	// by start time
	ListEvents(ctx context.Context, iin model.IIN, from, to time.Time, limit int) ([]model.CalendarEvent, error)

	// ListDaySummaries retrieves the externally produced day summaries
	// for the most recent days, ordered oldest first
	ListDaySummaries(ctx context.Context, iin model.IIN, days int) ([]model.DaySummary, error)

	// GetStageConfig retrieves the per-user stage configuration
	// document, or nil when absent (defaults apply)
	GetStageConfig(ctx context.Context, iin model.IIN) (map[string]any, error)

	// SaveMessage appends a message to a session log. This is a
	// caller-requested write: failures propagate.
	SaveMessage(ctx context.Context, iin model.IIN, session model.SessionID, msg model.Message) error
}
