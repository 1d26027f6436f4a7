package disclose

// Fixed quick-reply menus keyed by normalized intent. Suppressed
// entirely when the turn is held for clarification, since cards take
// visual priority.
var (
	greetingReplies = []string{"What do you remember about me?", "What's coming up?", "Help"}
	savedReplies    = []string{"Show my memories", "Add another", "Done"}
	recallReplies   = []string{"Tell me more", "That's not right", "Thanks"}
	questionReplies = []string{"Explain more", "Why?", "Thanks"}
)

func quickReplies(intent string, confirmed, hold bool) []string {
	if hold {
		return nil
	}
	if confirmed {
		return savedReplies
	}
	switch intent {
	case intentGreeting, intentSmalltalk:
		return greetingReplies
	case intentRecall, intentRecallTemporal:
		return recallReplies
	case intentQuestion:
		return questionReplies
	default:
		return nil
	}
}
