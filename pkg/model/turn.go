package model

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// IntentSignal is the upstream intent classification for the turn.
// The wire shape is either a bare string or an object with a primary
// field; anything else is treated as absent.
type IntentSignal struct {
	Primary string `json:"primary"`
}

// UnmarshalJSON accepts both `"greeting"` and `{"primary":"greeting"}`
func (s *IntentSignal) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		s.Primary = str
		return nil
	}

	var obj struct {
		Primary string `json:"primary"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		s.Primary = obj.Primary
		return nil
	}

	// Unusable signal degrades to absent, never to an error
	s.Primary = ""
	return nil
}

// Normalized returns the lowercased, trimmed intent name, or "" when
// the signal is absent or unusable.
func (s IntentSignal) Normalized() string {
	return strings.ToLower(strings.TrimSpace(s.Primary))
}

// TurnRequest is the structured pipeline call contract: one request
// per user turn, carrying the upstream stages' outputs.
type TurnRequest struct {
	IIN       IIN       `json:"iin"`
	SessionID SessionID `json:"sessionId"`
	Message   string    `json:"message"`
	Now       time.Time `json:"now"`

	Intent     IntentSignal               `json:"intent"`
	Candidates []ExtractedMemoryCandidate `json:"candidates"`

	// Retrieved memories already filtered for relevance/type/tier by
	// the upstream retrieval stage; disclosure only narrows further.
	Memories []ScoredMemory `json:"memories"`

	SaveDecision        *SaveDecision `json:"saveDecision,omitempty"`
	SaveResults         []SaveResult  `json:"saveResults,omitempty"`
	QuestionsAskedCount int           `json:"questionsAskedCount"`
}

// Validate converts an external payload into a usable request,
// failing fast instead of propagating sentinels downstream.
func (r *TurnRequest) Validate() error {
	if r.IIN == "" {
		return goerr.Wrap(ErrMalformedInput, "iin is required")
	}
	if r.SessionID == "" {
		return goerr.Wrap(ErrMalformedInput, "sessionId is required")
	}
	if r.Now.IsZero() {
		r.Now = time.Now()
	}
	for i, c := range r.Candidates {
		if c.Content == "" {
			return goerr.Wrap(ErrMalformedInput, "candidate content is empty", goerr.V("index", i))
		}
		if c.Type == "" {
			return goerr.Wrap(ErrMalformedInput, "candidate type is empty", goerr.V("index", i))
		}
	}
	return nil
}
