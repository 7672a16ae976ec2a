package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"PostGenius/models"
	"PostGenius/publishers"
	"PostGenius/store"
	"PostGenius/utils"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const (
	DefaultScheduleLeadTime = 10 * time.Minute

	draftDateLayout = "2006-01-02"
	draftTimeLayout = "15:04"
)

var errStatusUnchanged = errors.New("status unchanged")

// PostService owns every human-triggered transition of a scheduled post.
type PostService struct {
	store     *store.PostStore
	publisher publishers.PagePublisher
	notifier  Notifier
	leadTime  time.Duration
	location  *time.Location
	now       func() time.Time
}

type PostServiceOption func(*PostService)

func WithClock(now func() time.Time) PostServiceOption {
	return func(s *PostService) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLocation(loc *time.Location) PostServiceOption {
	return func(s *PostService) {
		if loc != nil {
			s.location = loc
		}
	}
}

func WithLeadTime(d time.Duration) PostServiceOption {
	return func(s *PostService) {
		if d >= 0 {
			s.leadTime = d
		}
	}
}

func WithNotifier(n Notifier) PostServiceOption {
	return func(s *PostService) {
		if n != nil {
			s.notifier = n
		}
	}
}

func NewPostService(postStore *store.PostStore, publisher publishers.PagePublisher, opts ...PostServiceOption) *PostService {
	s := &PostService{
		store:     postStore,
		publisher: publisher,
		notifier:  LogNotifier{},
		leadTime:  DefaultScheduleLeadTime,
		location:  time.Local,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PostService) List(ctx context.Context) ([]*models.ScheduledPost, error) {
	return s.store.List(ctx)
}

func (s *PostService) Get(ctx context.Context, id string) (*models.ScheduledPost, error) {
	return s.store.Get(ctx, id)
}

// ScheduleOrUpdate creates a scheduled post from the draft, or edits the post
// named by draft.EditingPostID. New posts always honour the lead time; edits
// only when isNewSchedule is set. Published posts cannot be edited.
func (s *PostService) ScheduleOrUpdate(ctx context.Context, draft models.Draft, isNewSchedule bool) (*models.ScheduledPost, error) {
	if err := requireCredentials(draft.PageID, draft.PageToken); err != nil {
		return nil, err
	}
	if err := validateDraft(ctx, &draft); err != nil {
		return nil, err
	}
	scheduledAt, err := s.parseSchedule(draft)
	if err != nil {
		return nil, err
	}
	now := s.now()
	editingID := strings.TrimSpace(draft.EditingPostID)
	if isNewSchedule || editingID == "" {
		if err := s.checkLeadTime(scheduledAt, now); err != nil {
			return nil, err
		}
	}

	if editingID != "" {
		updated, err := s.store.Update(ctx, editingID, func(p *models.ScheduledPost) error {
			if p.Status == models.StatusPublished {
				return ErrPostPublished
			}
			applyDraft(p, draft, scheduledAt)
			p.Status = models.StatusScheduled
			p.Attempts = 0
			p.LastError = ""
			p.UpdatedAt = now
			return nil
		})
		if err != nil {
			return nil, err
		}
		s.notify(ctx, models.EventPostUpdated, updated, "Post updated")
		return updated, nil
	}

	post := &models.ScheduledPost{
		ID:        uuid.New().String(),
		Status:    models.StatusScheduled,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyDraft(post, draft, scheduledAt)
	if err := s.store.Upsert(ctx, post); err != nil {
		return nil, err
	}
	utils.Infof("[Posts] scheduled %s for %s on page %s", post.ID, scheduledAt.Format(time.RFC3339), post.PageName)
	s.notify(ctx, models.EventPostCreated, post, "Post scheduled")
	return post, nil
}

// PublishNow publishes a stored post immediately regardless of its scheduled
// time. A failure leaves the status untouched and is returned as *PublishError.
// A post the scheduler is dispatching is rejected with ErrPublishInProgress.
func (s *PostService) PublishNow(ctx context.Context, id string) (*models.ScheduledPost, error) {
	if !s.store.Claim(id) {
		return nil, ErrPublishInProgress
	}
	defer s.store.Release(id)

	post, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Status == models.StatusPublished {
		return nil, ErrPostPublished
	}
	if err := requireCredentials(post.PageID, post.PageToken); err != nil {
		return nil, err
	}

	result := s.publisher.Publish(ctx, models.PublishRequest{
		PageID:      post.PageID,
		AccessToken: post.PageToken,
		Message:     post.Content,
		ImageSource: post.ImageSource,
	})
	if !result.Success {
		utils.Warnf("[Posts] publish now failed for %s: %s", id, result.Message)
		s.notify(ctx, models.EventPostPublishFailed, post, result.Message)
		return nil, &PublishError{Message: result.Message}
	}

	now := s.now()
	updated, err := s.store.Update(ctx, id, func(p *models.ScheduledPost) error {
		if p.Status == models.StatusPublished {
			return ErrPostPublished
		}
		p.Status = models.StatusPublished
		p.PublishedAt = &now
		p.ExternalID = result.ExternalID
		p.Attempts = 0
		p.LastError = ""
		p.UpdatedAt = now
		return nil
	})
	if err != nil {
		// The platform call already succeeded; report it with the local copy.
		utils.Warnf("[Posts] published %s but could not record it: %v", id, err)
		post.Status = models.StatusPublished
		post.PublishedAt = &now
		post.ExternalID = result.ExternalID
		updated = post
	}
	s.notify(ctx, models.EventPostPublished, updated, result.Message)
	return updated, nil
}

// PublishImmediate publishes a draft without storing it. When the draft asks
// for scheduling, the platform itself holds the post until the chosen time.
func (s *PostService) PublishImmediate(ctx context.Context, draft models.Draft) (models.PublishResult, error) {
	if err := requireCredentials(draft.PageID, draft.PageToken); err != nil {
		return models.PublishResult{}, err
	}
	if err := validation.ValidateStructWithContext(ctx, &draft,
		validation.Field(&draft.Content, validation.Required),
	); err != nil {
		return models.PublishResult{}, toValidationError(err)
	}

	req := models.PublishRequest{
		PageID:      draft.PageID,
		AccessToken: draft.PageToken,
		Message:     draft.Content,
		ImageSource: draft.ImageSource,
	}
	if draft.IsScheduling && draft.ScheduleDate != "" && draft.ScheduleTime != "" {
		at, err := s.parseSchedule(draft)
		if err != nil {
			return models.PublishResult{}, err
		}
		if err := s.checkLeadTime(at, s.now()); err != nil {
			return models.PublishResult{}, err
		}
		req.ScheduledAt = &at
	}

	result := s.publisher.Publish(ctx, req)
	if !result.Success {
		return result, &PublishError{Message: result.Message}
	}
	return result, nil
}

// TogglePause flips scheduled and paused. Published posts are left alone.
// Resuming clears the automatic failure count.
func (s *PostService) TogglePause(ctx context.Context, id string) (*models.ScheduledPost, error) {
	now := s.now()
	var event models.EventType
	updated, err := s.store.Update(ctx, id, func(p *models.ScheduledPost) error {
		switch p.Status {
		case models.StatusScheduled:
			p.Status = models.StatusPaused
			event = models.EventPostPaused
		case models.StatusPaused:
			p.Status = models.StatusScheduled
			p.Attempts = 0
			p.LastError = ""
			event = models.EventPostResumed
		default:
			return errStatusUnchanged
		}
		p.UpdatedAt = now
		return nil
	})
	if errors.Is(err, errStatusUnchanged) {
		return s.store.Get(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	s.notify(ctx, event, updated, "Status changed to "+string(updated.Status))
	return updated, nil
}

// Delete removes the post whatever its status. Deleting an unknown id succeeds.
func (s *PostService) Delete(ctx context.Context, id string) error {
	post, err := s.store.Get(ctx, id)
	if errors.Is(err, store.ErrPostNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.store.Remove(ctx, id); err != nil {
		return err
	}
	s.notify(ctx, models.EventPostDeleted, post, "Post deleted")
	return nil
}

// StartEdit returns the stored post as a draft ready to be edited and resubmitted.
func (s *PostService) StartEdit(ctx context.Context, id string) (*models.Draft, error) {
	post, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Status == models.StatusPublished {
		return nil, ErrPostPublished
	}
	at := post.ScheduledAt.In(s.location)
	return &models.Draft{
		Topic:         post.Topic,
		Tone:          post.Tone,
		CTA:           post.CTA,
		Content:       post.Content,
		ImageSource:   post.ImageSource,
		PageID:        post.PageID,
		PageName:      post.PageName,
		PageToken:     post.PageToken,
		ScheduleDate:  at.Format(draftDateLayout),
		ScheduleTime:  at.Format(draftTimeLayout),
		IsScheduling:  true,
		EditingPostID: post.ID,
	}, nil
}

func (s *PostService) parseSchedule(draft models.Draft) (time.Time, error) {
	at, err := time.ParseInLocation(draftDateLayout+" "+draftTimeLayout,
		strings.TrimSpace(draft.ScheduleDate)+" "+strings.TrimSpace(draft.ScheduleTime), s.location)
	if err != nil {
		return time.Time{}, &ValidationError{Fields: validation.Errors{
			"schedule_date": fmt.Errorf("invalid date or time: %w", err),
		}}
	}
	return at, nil
}

func (s *PostService) checkLeadTime(at, now time.Time) error {
	if at.Before(now.Add(s.leadTime)) {
		return fmt.Errorf("%w: must be at least %s from now", ErrScheduleTooSoon, s.leadTime)
	}
	return nil
}

func (s *PostService) notify(ctx context.Context, t models.EventType, p *models.ScheduledPost, msg string) {
	s.notifier.Notify(ctx, models.PostEvent{
		Type:    t,
		PostID:  p.ID,
		Status:  p.Status,
		Message: msg,
		At:      s.now(),
	})
}

func requireCredentials(pageID, token string) error {
	if strings.TrimSpace(pageID) == "" || strings.TrimSpace(token) == "" {
		return ErrMissingCredential
	}
	return nil
}

func validateDraft(ctx context.Context, draft *models.Draft) error {
	err := validation.ValidateStructWithContext(ctx, draft,
		validation.Field(&draft.Content, validation.Required),
		validation.Field(&draft.Tone, validation.Required, validation.By(validTone)),
		validation.Field(&draft.ScheduleDate, validation.Required, validation.Date(draftDateLayout)),
		validation.Field(&draft.ScheduleTime, validation.Required, validation.Date(draftTimeLayout)),
	)
	return toValidationError(err)
}

func validTone(value interface{}) error {
	tone, _ := value.(models.PostTone)
	if !tone.Valid() {
		return fmt.Errorf("must be one of %v", models.Tones)
	}
	return nil
}

func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	var fields validation.Errors
	if errors.As(err, &fields) {
		return &ValidationError{Fields: fields}
	}
	return err
}

func applyDraft(p *models.ScheduledPost, d models.Draft, scheduledAt time.Time) {
	p.Topic = d.Topic
	p.Tone = d.Tone
	p.CTA = d.CTA
	p.Content = d.Content
	p.ImageSource = d.ImageSource
	p.PageID = d.PageID
	p.PageName = d.PageName
	p.PageToken = d.PageToken
	p.ScheduledAt = scheduledAt
}
