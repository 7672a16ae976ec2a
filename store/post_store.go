package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"PostGenius/models"
	"PostGenius/utils"
)

var ErrPostNotFound = errors.New("post not found")

// PostStore is the authoritative collection of scheduled posts. Every
// mutation is a read-modify-write of the whole collection performed under a
// single lock, so concurrent writers (HTTP actions and the scheduler) are
// serialized and cannot lose each other's updates.
type PostStore struct {
	kv  KeyValue
	key string
	mu  sync.Mutex

	flightMu sync.Mutex
	inFlight map[string]struct{}
}

func NewPostStore(kv KeyValue) *PostStore {
	return &PostStore{kv: kv, key: PostsKey, inFlight: make(map[string]struct{})}
}

// Claim marks id as being published. It reports false when another caller
// already holds the claim. Every successful Claim must be paired with Release.
func (s *PostStore) Claim(id string) bool {
	s.flightMu.Lock()
	defer s.flightMu.Unlock()
	if _, busy := s.inFlight[id]; busy {
		return false
	}
	s.inFlight[id] = struct{}{}
	return true
}

func (s *PostStore) Release(id string) {
	s.flightMu.Lock()
	delete(s.inFlight, id)
	s.flightMu.Unlock()
}

// Load returns the persisted posts in insertion order. A missing or corrupt
// payload yields an empty collection; only a failing medium is an error.
func (s *PostStore) Load(ctx context.Context) ([]*models.ScheduledPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Save persists the full collection. A nil slice is stored as "[]".
func (s *PostStore) Save(ctx context.Context, posts []*models.ScheduledPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, posts)
}

func (s *PostStore) List(ctx context.Context) ([]*models.ScheduledPost, error) {
	return s.Load(ctx)
}

func (s *PostStore) Get(ctx context.Context, id string) (*models.ScheduledPost, error) {
	posts, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexOf(posts, id); i >= 0 {
		return posts[i], nil
	}
	return nil, ErrPostNotFound
}

// Upsert inserts the post or replaces the one with the same id in place.
func (s *PostStore) Upsert(ctx context.Context, post *models.ScheduledPost) error {
	if post == nil || post.ID == "" {
		return fmt.Errorf("upsert: post id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.load(ctx)
	if err != nil {
		return err
	}
	if i := indexOf(posts, post.ID); i >= 0 {
		posts[i] = post
	} else {
		posts = append(posts, post)
	}
	return s.save(ctx, posts)
}

// Remove deletes by id. Removing an unknown id is a no-op.
func (s *PostStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(posts, id)
	if i < 0 {
		return nil
	}
	posts = append(posts[:i], posts[i+1:]...)
	return s.save(ctx, posts)
}

// Update applies fn to the stored post atomically. If fn returns an error
// nothing is written and that error is returned.
func (s *PostStore) Update(ctx context.Context, id string, fn func(p *models.ScheduledPost) error) (*models.ScheduledPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(posts, id)
	if i < 0 {
		return nil, ErrPostNotFound
	}
	if err := fn(posts[i]); err != nil {
		return nil, err
	}
	posts[i].ID = id
	if err := s.save(ctx, posts); err != nil {
		return nil, err
	}
	return posts[i], nil
}

func (s *PostStore) load(ctx context.Context) ([]*models.ScheduledPost, error) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.key, err)
	}
	posts := make([]*models.ScheduledPost, 0)
	if !ok || strings.TrimSpace(raw) == "" {
		return posts, nil
	}
	if err := json.Unmarshal([]byte(raw), &posts); err != nil {
		utils.Warnf("[Store] discarding corrupt %q payload: %v", s.key, err)
		return make([]*models.ScheduledPost, 0), nil
	}

	// Drop null entries a hand-edited payload might carry.
	out := posts[:0]
	for _, p := range posts {
		if p != nil {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *PostStore) save(ctx context.Context, posts []*models.ScheduledPost) error {
	if posts == nil {
		posts = make([]*models.ScheduledPost, 0)
	}
	raw, err := json.Marshal(posts)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, s.key, string(raw)); err != nil {
		utils.Errorf("[Store] failed to persist %d posts: %v", len(posts), err)
		return fmt.Errorf("write %s: %w", s.key, err)
	}
	return nil
}

func indexOf(posts []*models.ScheduledPost, id string) int {
	for i, p := range posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}
