package publishers

import (
	"context"

	"PostGenius/models"
)

// PagePublisher performs exactly one publish attempt. Failures are reported
// in the result, never as a Go error, so callers choose the retry policy.
type PagePublisher interface {
	Publish(ctx context.Context, req models.PublishRequest) models.PublishResult
}

// PagePublisherFunc adapts a function to PagePublisher.
type PagePublisherFunc func(ctx context.Context, req models.PublishRequest) models.PublishResult

func (f PagePublisherFunc) Publish(ctx context.Context, req models.PublishRequest) models.PublishResult {
	return f(ctx, req)
}

func failure(message string) models.PublishResult {
	return models.PublishResult{Success: false, Message: message}
}
