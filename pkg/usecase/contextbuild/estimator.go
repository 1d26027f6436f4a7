package contextbuild

// TokenEstimator approximates the token count of a text. Every trim
// loop shares one estimator, and the estimator must be deterministic
// and monotonic in text length so the loops provably terminate. Swap
// in a real tokenizer here if exact budget compliance ever becomes a
// requirement; the trimming algorithms do not change shape.
type TokenEstimator func(text string) int

// EstimateTokens is the default length-proportional heuristic:
// roughly four characters per token, rounded up.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + 3) / 4
}
