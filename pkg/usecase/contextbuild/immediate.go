package contextbuild

import (
	"strings"

	"github.com/m-mizutani/recall/pkg/model"
)

// conversationTurn is one request/response cycle: a user message and
// the assistant messages that follow it.
type conversationTurn struct {
	messages []model.Message
}

// groupTurns splits a chronological message log into turns. Assistant
// messages preceding the first user message form their own leading
// turn so nothing is dropped.
func groupTurns(msgs []model.Message) []conversationTurn {
	var turns []conversationTurn
	for _, msg := range msgs {
		if msg.Role == "user" || len(turns) == 0 {
			turns = append(turns, conversationTurn{})
		}
		last := &turns[len(turns)-1]
		last.messages = append(last.messages, msg)
	}
	return turns
}

func renderTurns(turns []conversationTurn) string {
	var b strings.Builder
	for _, turn := range turns {
		for _, msg := range turn.messages {
			switch msg.Role {
			case "user":
				b.WriteString("User: ")
			case "assistant":
				b.WriteString("Assistant: ")
			default:
				b.WriteString(msg.Role + ": ")
			}
			b.WriteString(msg.Content)
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// buildImmediate renders the last turns of the active conversation,
// dropping the oldest turn and re-estimating until the layer fits its
// budget or a single turn remains.
func buildImmediate(msgs []model.Message, budget int, estimate TokenEstimator) model.ContextLayer {
	turns := groupTurns(msgs)
	if len(turns) == 0 {
		return model.ContextLayer{Name: model.LayerImmediate}
	}

	content := renderTurns(turns)
	trimmed := false
	for estimate(content) > budget && len(turns) > 1 {
		turns = turns[1:]
		content = renderTurns(turns)
		trimmed = true
	}

	return model.ContextLayer{
		Name:       model.LayerImmediate,
		Content:    content,
		TokenCount: estimate(content),
		ItemCount:  len(turns),
		Trimmed:    trimmed,
	}
}
