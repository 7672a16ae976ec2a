package services

import (
	"context"
	"sync"
	"time"

	"PostGenius/models"
	"PostGenius/store"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type recordingPublisher struct {
	mu      sync.Mutex
	calls   []models.PublishRequest
	respond func(req models.PublishRequest) models.PublishResult
}

func (p *recordingPublisher) Publish(_ context.Context, req models.PublishRequest) models.PublishResult {
	p.mu.Lock()
	p.calls = append(p.calls, req)
	respond := p.respond
	p.mu.Unlock()
	if respond == nil {
		return models.PublishResult{Success: true, ExternalID: "ext-1", Message: "ok"}
	}
	return respond(req)
}

func (p *recordingPublisher) Calls() []models.PublishRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.PublishRequest, len(p.calls))
	copy(out, p.calls)
	return out
}

func succeedWith(id string) func(models.PublishRequest) models.PublishResult {
	return func(models.PublishRequest) models.PublishResult {
		return models.PublishResult{Success: true, ExternalID: id}
	}
}

func failWith(msg string) func(models.PublishRequest) models.PublishResult {
	return func(models.PublishRequest) models.PublishResult {
		return models.PublishResult{Success: false, Message: msg}
	}
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []models.PostEvent
}

func (n *recordingNotifier) Notify(_ context.Context, e models.PostEvent) {
	n.mu.Lock()
	n.events = append(n.events, e)
	n.mu.Unlock()
}

func (n *recordingNotifier) Types() []models.EventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]models.EventType, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Type)
	}
	return out
}

func seedPost(postStore *store.PostStore, id string, status models.PostStatus, at time.Time) *models.ScheduledPost {
	p := &models.ScheduledPost{
		ID:          id,
		Topic:       "launch",
		Tone:        models.ToneProfessional,
		Content:     "Content " + id,
		PageID:      "page-1",
		PageName:    "Shop",
		PageToken:   "token-1",
		ScheduledAt: at,
		Status:      status,
		CreatedAt:   at.Add(-time.Hour),
		UpdatedAt:   at.Add(-time.Hour),
	}
	if err := postStore.Upsert(context.Background(), p); err != nil {
		panic(err)
	}
	return p
}
