// Package llmjson extracts JSON payloads from model responses that may
// wrap them in prose or markdown fences.
package llmjson

import (
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/recall/pkg/model"
)

// UnmarshalObject finds the first '{' and the last '}' in the response
// and unmarshals the span into dst. Returns ErrResponseParse when no
// such span exists or the span is not valid JSON.
func UnmarshalObject(response string, dst any) error {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start < 0 || end < start {
		return goerr.Wrap(model.ErrResponseParse, "no JSON object in response")
	}

	if err := json.Unmarshal([]byte(response[start:end+1]), dst); err != nil {
		return goerr.Wrap(model.ErrResponseParse, "invalid JSON object in response")
	}
	return nil
}
