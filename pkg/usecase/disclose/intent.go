package disclose

import "github.com/m-mizutani/recall/pkg/model"

// Intent names recognized by the mode lookup. The pipeline never
// infers intent; it only normalizes what the upstream classifier
// supplies.
const (
	intentGreeting          = "greeting"
	intentSmalltalk         = "smalltalk"
	intentMemoryInstruction = "memory_instruction"
	intentQuestion          = "question"
	intentRecall            = "memory_recall"
	intentRecallTemporal    = "memory_recall_temporal"
	intentRecommendation    = "recommendation"
	intentAdvice            = "advice"
)

// modeFor is the deterministic mode lookup. Anything unrecognized,
// including an absent intent, lands on the conservative neutral_ack.
func modeFor(intent string) model.ContextMode {
	switch intent {
	case intentGreeting, intentSmalltalk:
		return model.ModeIdentityOnly
	case intentMemoryInstruction:
		return model.ModeMemoryConfirm
	case intentQuestion, intentRecall, intentRecallTemporal, intentRecommendation, intentAdvice:
		return model.ModeMemoryUse
	default:
		return model.ModeNeutralAck
	}
}

// modeDirectives maps each mode to its fixed directive block. Blocks
// are appended to the base persona instructions, never mixed into them.
var modeDirectives = map[model.ContextMode]string{
	model.ModeIdentityOnly: "Respond warmly and briefly. You may refer to who the user is, " +
		"but do not bring up stored facts, events, or preferences unprompted.",
	model.ModeNeutralAck: "Acknowledge the user's message naturally. Do not volunteer stored " +
		"information and do not speculate about what you may or may not know.",
	model.ModeMemoryConfirm: "The user is telling you something to remember. You may confirm " +
		"your understanding of what they said, but follow the save directive below about " +
		"whether anything was actually saved.",
	model.ModeMemoryUse: "You may draw on the provided context to answer. Only state facts " +
		"that appear in the context; say so plainly when you do not know.",
}
