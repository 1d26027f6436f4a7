package adapter

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/recall/pkg/model"
)

// unavailableModel stands in when no model credentials are configured.
// Every call fails, so every secondary analysis takes its documented
// degrade path instead of blocking the turn.
type unavailableModel struct{}

func NewUnavailableModel() TextModel {
	return &unavailableModel{}
}

func (m *unavailableModel) Complete(_ context.Context, _ string, _ CompleteParams) (string, error) {
	return "", goerr.Wrap(model.ErrCredentialUnavailable, "no text model configured")
}
