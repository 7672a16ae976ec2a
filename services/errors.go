package services

import (
	"errors"
	"fmt"

	"PostGenius/store"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	ErrMissingCredential = errors.New("missing page id or access token")
	ErrMissingAPIKey     = errors.New("missing generative AI api key")
	ErrScheduleTooSoon   = errors.New("scheduled time is too soon")
	ErrPostNotFound      = store.ErrPostNotFound
	ErrPostPublished     = errors.New("post is already published")
	ErrPublishInProgress = errors.New("post is already being published")
	ErrGenerationFailed  = errors.New("content generation failed")
)

// ValidationError reports field-level problems with a draft.
type ValidationError struct {
	Fields validation.Errors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid draft: %v", e.Fields)
}

func (e *ValidationError) Unwrap() error {
	return e.Fields
}

// PublishError carries the platform's failure message for a human-triggered
// publish.
type PublishError struct {
	Message string
}

func (e *PublishError) Error() string {
	return e.Message
}

// IsConfigurationError reports whether err stems from missing credentials or keys.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrMissingCredential) || errors.Is(err, ErrMissingAPIKey)
}
