package video

import (
	"fmt"

	"github.com/safestream/safestream-go/internal/validator"
	"github.com/safestream/safestream-go/pkg/safestream/client"
)

var videoValidator = validator.NewValidator().Register(validator.NewVideoValidationRules()...)

// Validate checks v before it is submitted for ingest.
func (v Video) Validate() error {
	if v.SourceURL == "" {
		return client.NewErrValidation("a source URL is required to ingest a video")
	}
	if err := videoValidator.Struct(v); err != nil {
		return client.NewErrValidation("%w", err)
	}
	if err := v.Config.Validate(); err != nil {
		return client.NewErrValidation("%w", fmt.Errorf("invalid storage configuration: %w", err))
	}
	return nil
}
