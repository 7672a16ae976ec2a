package services

import (
	"context"

	"PostGenius/models"
	"PostGenius/utils"
)

// Notifier is told about every observable post transition so listeners can
// refresh their view.
type Notifier interface {
	Notify(ctx context.Context, event models.PostEvent)
}

type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, event models.PostEvent) {
	utils.WithFields(map[string]interface{}{
		"event":   string(event.Type),
		"post_id": event.PostID,
		"status":  string(event.Status),
	}).Info(event.Message)
}

// MultiNotifier fans an event out to several notifiers.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, event models.PostEvent) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, event)
		}
	}
}
