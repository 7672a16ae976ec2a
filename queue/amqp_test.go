package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"PostGenius/models"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	exchange string
	key      string
	msgs     []amqp.Publishing
	err      error
}

func (f *fakeChannel) Publish(exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange = exchange
	f.key = key
	f.msgs = append(f.msgs, msg)
	return f.err
}

func TestNotify_PublishesJSONEvent(t *testing.T) {
	ch := &fakeChannel{}
	n := newAMQPNotifier(ch, "postgenius.events")
	at := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	n.Notify(context.Background(), models.PostEvent{
		Type:   models.EventPostPublished,
		PostID: "p1",
		Status: models.StatusPublished,
		At:     at,
	})

	require.Len(t, ch.msgs, 1)
	assert.Equal(t, "postgenius.events", ch.exchange)
	assert.Equal(t, "post.published", ch.key)
	assert.Equal(t, "application/json", ch.msgs[0].ContentType)

	var got models.PostEvent
	require.NoError(t, json.Unmarshal(ch.msgs[0].Body, &got))
	assert.Equal(t, "p1", got.PostID)
	assert.Equal(t, models.StatusPublished, got.Status)
}

func TestNotify_PublishErrorIsSwallowed(t *testing.T) {
	n := newAMQPNotifier(&fakeChannel{err: errors.New("channel closed")}, "x")
	assert.NotPanics(t, func() {
		n.Notify(context.Background(), models.PostEvent{Type: models.EventPostDeleted, PostID: "p"})
	})
	assert.NoError(t, n.Close())
}
