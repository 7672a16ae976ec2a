package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"PostGenius/models"
	"PostGenius/publishers"
	"PostGenius/store"
	"PostGenius/utils"

	"github.com/robfig/cron/v3"
)

const DefaultSchedulerInterval = time.Minute

var errNoLongerScheduled = errors.New("post is no longer scheduled")

type Scheduler struct {
	cron        *cron.Cron
	store       *store.PostStore
	publisher   publishers.PagePublisher
	notifier    Notifier
	interval    time.Duration
	maxAttempts int
	now         func() time.Time

	ctx     context.Context
	cancel  context.CancelFunc
	running sync.WaitGroup
}

type SchedulerOption func(*Scheduler)

func WithInterval(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithMaxAttempts caps consecutive automatic failures. Zero means unlimited.
func WithMaxAttempts(n int) SchedulerOption {
	return func(s *Scheduler) {
		if n >= 0 {
			s.maxAttempts = n
		}
	}
}

func WithSchedulerClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

func WithSchedulerNotifier(n Notifier) SchedulerOption {
	return func(s *Scheduler) {
		if n != nil {
			s.notifier = n
		}
	}
}

func NewScheduler(postStore *store.PostStore, publisher publishers.PagePublisher, opts ...SchedulerOption) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:        cron.New(),
		store:       postStore,
		publisher:   publisher,
		notifier:    LogNotifier{},
		interval:    DefaultSchedulerInterval,
		maxAttempts: 5,
		now:         time.Now,
		ctx:         ctx,
		cancel:      cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start registers the tick job on a fresh cron. A stopped Scheduler may be
// started again.
func (s *Scheduler) Start() error {
	s.cron = cron.New()
	s.ctx, s.cancel = context.WithCancel(context.Background())
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), s.runTick); err != nil {
		return fmt.Errorf("register scheduler job: %w", err)
	}
	s.cron.Start()
	utils.Infof("[Scheduler] started, checking every %s", s.interval)

	// Catch up on anything that came due while the process was down.
	s.running.Add(1)
	go func() {
		defer s.running.Done()
		s.runTick()
	}()
	return nil
}

// Stop halts the cron and waits for running ticks to finish.
func (s *Scheduler) Stop() {
	done := s.cron.Stop()
	<-done.Done()
	s.running.Wait()
	s.cancel()
	utils.Infof("[Scheduler] stopped")
}

func (s *Scheduler) runTick() {
	report, err := s.Tick(s.ctx)
	if err != nil {
		utils.Errorf("[Scheduler] tick failed: %v", err)
		return
	}
	if report.Due > 0 {
		utils.WithFields(map[string]interface{}{
			"due":        report.Due,
			"dispatched": report.Dispatched,
			"published":  report.Published,
			"failed":     report.Failed,
			"in_flight":  report.InFlight,
			"paused":     report.Paused,
		}).Info("[Scheduler] tick complete")
	}
}

// Tick reads the store fresh, publishes every due post concurrently and folds
// each result back into the store. Posts still being published by an earlier
// tick, or by a publish-now, are skipped.
func (s *Scheduler) Tick(ctx context.Context) (models.TickReport, error) {
	var report models.TickReport

	posts, err := s.store.Load(ctx)
	if err != nil {
		return report, err
	}

	now := s.now()
	var due []*models.ScheduledPost
	for _, p := range posts {
		if p.IsDue(now) {
			due = append(due, p)
		}
	}
	report.Due = len(due)

	var (
		wg      sync.WaitGroup
		countMu sync.Mutex
	)
	for _, candidate := range due {
		if !s.store.Claim(candidate.ID) {
			report.InFlight++
			continue
		}
		// The snapshot may predate a dispatch that finished before the claim.
		post, err := s.store.Get(ctx, candidate.ID)
		if err != nil || !post.IsDue(now) {
			s.store.Release(candidate.ID)
			continue
		}
		report.Dispatched++

		wg.Add(1)
		go func(p *models.ScheduledPost) {
			defer wg.Done()
			defer s.store.Release(p.ID)

			outcome := s.dispatch(ctx, p)

			countMu.Lock()
			defer countMu.Unlock()
			switch outcome {
			case outcomePublished:
				report.Published++
			case outcomePaused:
				report.Failed++
				report.Paused++
			case outcomeFailed:
				report.Failed++
			}
		}(post)
	}
	wg.Wait()

	return report, nil
}

type dispatchOutcome int

const (
	outcomeSkipped dispatchOutcome = iota
	outcomePublished
	outcomeFailed
	outcomePaused
)

func (s *Scheduler) dispatch(ctx context.Context, post *models.ScheduledPost) dispatchOutcome {
	log := utils.WithFields(map[string]interface{}{"post_id": post.ID, "page_id": post.PageID})
	log.Infof("[Scheduler] publishing post due at %s", post.ScheduledAt.Format(time.RFC3339))

	result := s.publisher.Publish(ctx, models.PublishRequest{
		PageID:      post.PageID,
		AccessToken: post.PageToken,
		Message:     post.Content,
		ImageSource: post.ImageSource,
	})

	if result.Success {
		return s.markPublished(ctx, post.ID, result)
	}
	log.Warnf("[Scheduler] publish failed: %s", result.Message)
	return s.markFailed(ctx, post.ID, result.Message)
}

func (s *Scheduler) markPublished(ctx context.Context, id string, result models.PublishResult) dispatchOutcome {
	now := s.now()
	updated, err := s.store.Update(ctx, id, func(p *models.ScheduledPost) error {
		if p.Status != models.StatusScheduled {
			return errNoLongerScheduled
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
		s.logFoldBackSkip(id, err)
		return outcomeSkipped
	}

	s.notifier.Notify(ctx, models.PostEvent{
		Type:    models.EventPostPublished,
		PostID:  updated.ID,
		Status:  updated.Status,
		Message: result.Message,
		At:      now,
	})
	return outcomePublished
}

func (s *Scheduler) markFailed(ctx context.Context, id, message string) dispatchOutcome {
	now := s.now()
	outcome := outcomeFailed
	updated, err := s.store.Update(ctx, id, func(p *models.ScheduledPost) error {
		if p.Status != models.StatusScheduled {
			return errNoLongerScheduled
		}
		p.Attempts++
		p.LastError = message
		p.UpdatedAt = now
		if s.maxAttempts > 0 && p.Attempts >= s.maxAttempts {
			p.Status = models.StatusPaused
			outcome = outcomePaused
		}
		return nil
	})
	if err != nil {
		s.logFoldBackSkip(id, err)
		return outcomeFailed
	}

	if outcome == outcomePaused {
		utils.Warnf("[Scheduler] post %s paused after %d failed attempts", id, updated.Attempts)
	}
	s.notifier.Notify(ctx, models.PostEvent{
		Type:    models.EventPostPublishFailed,
		PostID:  updated.ID,
		Status:  updated.Status,
		Message: message,
		At:      now,
	})
	return outcome
}

func (s *Scheduler) logFoldBackSkip(id string, err error) {
	switch {
	case errors.Is(err, store.ErrPostNotFound):
		utils.Infof("[Scheduler] post %s was deleted while publishing", id)
	case errors.Is(err, errNoLongerScheduled):
		utils.Warnf("[Scheduler] post %s changed state while publishing, result discarded", id)
	default:
		utils.Errorf("[Scheduler] could not record result for post %s: %v", id, err)
	}
}
