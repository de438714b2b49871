package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"school-admin/internal/event"
	"school-admin/internal/model"
	"school-admin/internal/policy"
)

const (
	activityWriteTimeout  = 5 * time.Second
	defaultSystemLogLimit = 100
	maxSystemLogLimit     = 1000
)

// ActivityService records task activity off the request path. Record
// publishes to the bus; a recorder goroutine started with Start drains the
// queue into the store. Failures there are only logged.
type ActivityService struct {
	store ActivityStore
	bus   event.Bus
	now   func() time.Time

	mu          sync.Mutex
	unsubscribe func()
	done        chan struct{}
}

func NewActivityService(store ActivityStore, bus event.Bus) *ActivityService {
	return &ActivityService{
		store: store,
		bus:   bus,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *ActivityService) Record(typ event.Type, entry model.ActivityEntry) {
	if s == nil {
		return
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	s.bus.Publish(event.Event{
		Type:      typ,
		Entry:     entry,
		Timestamp: entry.CreatedAt,
		ActorID:   entry.ActorID,
	})
}

// Start launches the recorder. Calling it twice is a no-op.
func (s *ActivityService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return
	}

	ch, unsubscribe := s.bus.Subscribe()
	s.unsubscribe = unsubscribe
	s.done = make(chan struct{})

	go s.run(ch, s.done)
}

func (s *ActivityService) run(ch <-chan event.Event, done chan struct{}) {
	defer close(done)
	for e := range ch {
		s.write(e)
	}
}

func (s *ActivityService) write(e event.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), activityWriteTimeout)
	defer cancel()

	if err := s.store.Log(ctx, e.Entry); err != nil {
		slog.Error("activity log write failed",
			"event_id", e.ID,
			"type", string(e.Type),
			"task_id", e.Entry.TaskID,
			"remark", string(e.Entry.Remark),
			"error", err.Error(),
		)
	}
}

// Flush stops accepting events and waits until everything already queued
// has been written, or ctx is done.
func (s *ActivityService) Flush(ctx context.Context) error {
	s.mu.Lock()
	unsubscribe, done := s.unsubscribe, s.done
	s.mu.Unlock()
	if done == nil {
		return nil
	}

	unsubscribe()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("flush activity queue: %w", ctx.Err())
	}
}

// List returns activity entries, newest first. Leaders only see their own
// dimension.
func (s *ActivityService) List(ctx context.Context, caller model.Identity, query model.ActivityQuery) ([]model.ActivityEntry, model.Meta, error) {
	if err := policy.Authorize(caller, policy.OpActivityRead); err != nil {
		return nil, model.Meta{}, err
	}
	scope, err := policy.DimensionFilter(caller)
	if err != nil {
		return nil, model.Meta{}, err
	}
	if scope != nil {
		if query.DimensionID != nil && *query.DimensionID != *scope {
			return nil, model.Meta{}, fmt.Errorf("%w: dimension %d is outside the caller's scope", model.ErrForbidden, *query.DimensionID)
		}
		query.DimensionID = scope
	}
	return s.store.Query(ctx, query)
}

func (s *ActivityService) SystemLogs(ctx context.Context, caller model.Identity, limit int) ([]model.SystemLog, error) {
	if err := policy.Authorize(caller, policy.OpSystemLogRead); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultSystemLogLimit
	}
	if limit > maxSystemLogLimit {
		limit = maxSystemLogLimit
	}
	scope, err := policy.DimensionFilter(caller)
	if err != nil {
		return nil, err
	}
	return s.store.SystemLogs(ctx, limit, scope)
}
