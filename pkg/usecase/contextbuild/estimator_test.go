package contextbuild

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
)

func TestEstimateTokens(t *testing.T) {
	gt.Equal(t, EstimateTokens(""), 0)
	gt.Equal(t, EstimateTokens("a"), 1)
	gt.Equal(t, EstimateTokens("abcd"), 1)
	gt.Equal(t, EstimateTokens("abcde"), 2)
	gt.Equal(t, EstimateTokens(strings.Repeat("x", 400)), 100)
}

func TestEstimateTokensMonotonic(t *testing.T) {
	// Trim loops rely on longer text never estimating lower
	prev := 0
	for n := 0; n < 64; n++ {
		cur := EstimateTokens(strings.Repeat("a", n))
		gt.Number(t, cur).GreaterOrEqual(prev)
		prev = cur
	}
}
