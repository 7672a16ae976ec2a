package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"PostGenius/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPost(id string, status models.PostStatus) *models.ScheduledPost {
	at := time.Date(2026, 10, 20, 10, 0, 0, 0, time.UTC)
	return &models.ScheduledPost{
		ID:          id,
		Topic:       "coffee",
		Tone:        models.ToneFriendly,
		Content:     "Hello " + id,
		PageID:      "page-1",
		PageName:    "Cafe",
		PageToken:   "tok",
		ScheduledAt: at,
		Status:      status,
		CreatedAt:   at.Add(-time.Hour),
		UpdatedAt:   at.Add(-time.Hour),
	}
}

func TestLoad_EmptyWhenNothingPersisted(t *testing.T) {
	s := NewPostStore(NewMemoryKV())

	posts, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestLoad_CorruptPayloadDegradesToEmpty(t *testing.T) {
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(context.Background(), PostsKey, "{not json"))

	s := NewPostStore(kv)
	posts, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, posts)

	// The store keeps working on top of the corrupt payload.
	require.NoError(t, s.Upsert(context.Background(), newPost("a", models.StatusScheduled)))
	posts, err = s.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestSaveLoad_IsFixedPoint(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	s := NewPostStore(kv)

	// Nothing persisted: saving the loaded default writes exactly "[]".
	posts, err := s.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, posts))
	raw, ok, _ := kv.Get(ctx, PostsKey)
	require.True(t, ok)
	assert.Equal(t, "[]", raw)

	published := newPost("b", models.StatusPublished)
	now := time.Date(2026, 10, 20, 10, 1, 0, 0, time.FixedZone("X", -5*3600))
	published.PublishedAt = &now
	published.ExternalID = "999"
	require.NoError(t, s.Save(ctx, []*models.ScheduledPost{newPost("a", models.StatusScheduled), published}))
	before, _, _ := kv.Get(ctx, PostsKey)

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, loaded))
	after, _, _ := kv.Get(ctx, PostsKey)

	assert.Equal(t, before, after)
}

func TestUpsert_InsertsThenReplacesKeepingOrder(t *testing.T) {
	ctx := context.Background()
	s := NewPostStore(NewMemoryKV())

	require.NoError(t, s.Upsert(ctx, newPost("a", models.StatusScheduled)))
	require.NoError(t, s.Upsert(ctx, newPost("b", models.StatusScheduled)))

	changed := newPost("a", models.StatusPaused)
	changed.Content = "edited"
	require.NoError(t, s.Upsert(ctx, changed))

	posts, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "a", posts[0].ID)
	assert.Equal(t, "edited", posts[0].Content)
	assert.Equal(t, models.StatusPaused, posts[0].Status)
	assert.Equal(t, "b", posts[1].ID)
}

func TestUpsert_RequiresID(t *testing.T) {
	s := NewPostStore(NewMemoryKV())
	assert.Error(t, s.Upsert(context.Background(), &models.ScheduledPost{}))
}

func TestRemove_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewPostStore(NewMemoryKV())
	require.NoError(t, s.Upsert(ctx, newPost("a", models.StatusScheduled)))

	require.NoError(t, s.Remove(ctx, "a"))
	require.NoError(t, s.Remove(ctx, "a"))
	require.NoError(t, s.Remove(ctx, "never-existed"))

	posts, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	s := NewPostStore(NewMemoryKV())
	require.NoError(t, s.Upsert(ctx, newPost("a", models.StatusScheduled)))

	t.Run("applies mutation and keeps id", func(t *testing.T) {
		got, err := s.Update(ctx, "a", func(p *models.ScheduledPost) error {
			p.Status = models.StatusPaused
			p.ID = "tampered"
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "a", got.ID)

		stored, err := s.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, models.StatusPaused, stored.Status)
	})

	t.Run("callback error aborts the write", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := s.Update(ctx, "a", func(p *models.ScheduledPost) error {
			p.Content = "should not persist"
			return boom
		})
		assert.ErrorIs(t, err, boom)

		stored, err := s.Get(ctx, "a")
		require.NoError(t, err)
		assert.NotEqual(t, "should not persist", stored.Content)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := s.Update(ctx, "zzz", func(p *models.ScheduledPost) error { return nil })
		assert.ErrorIs(t, err, ErrPostNotFound)
	})
}

type failingKV struct{ MemoryKV }

func (f *failingKV) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("medium down")
}

func TestMutations_AbortWhenMediumUnreadable(t *testing.T) {
	s := NewPostStore(&failingKV{})
	err := s.Upsert(context.Background(), newPost("a", models.StatusScheduled))
	assert.Error(t, err)
}

func TestFileKV_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "store.json")

	kv, err := NewFileKV(path)
	require.NoError(t, err)
	require.NoError(t, NewPostStore(kv).Upsert(ctx, newPost("a", models.StatusScheduled)))
	require.NoError(t, kv.Set(ctx, CredentialsKey, `{"facebook_app_id":"1"}`))

	reopened, err := NewFileKV(path)
	require.NoError(t, err)
	posts, err := NewPostStore(reopened).List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "a", posts[0].ID)

	creds, ok, err := reopened.Get(ctx, CredentialsKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, creds, "facebook_app_id")
}

func TestFileKV_MissingKey(t *testing.T) {
	kv, err := NewFileKV(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)

	_, ok, err := kv.Get(context.Background(), PostsKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClaim_IsExclusiveUntilReleased(t *testing.T) {
	s := NewPostStore(NewMemoryKV())

	assert.True(t, s.Claim("p1"))
	assert.False(t, s.Claim("p1"))
	assert.True(t, s.Claim("p2"))

	s.Release("p1")
	assert.True(t, s.Claim("p1"))
	s.Release("ghost")
}
