package resumes

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"cv-backend/internal/cvform"
	"cv-backend/internal/shared/telemetry"
)

// Store is the adapter the orchestrator talks to. It assigns ids and
// timestamps, publishes a Change after every successful write and serves
// snapshot subscriptions.
type Store struct {
	repo     Repo
	hub      *Hub
	notifier Notifier
	now      func() time.Time
	newID    func() string
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithNotifier routes published changes through n instead of the hub, for
// example a RedisBus whose forwarder dispatches into the hub.
func WithNotifier(n Notifier) StoreOption {
	return func(s *Store) { s.notifier = n }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides record id generation.
func WithIDGenerator(fn func() string) StoreOption {
	return func(s *Store) { s.newID = fn }
}

// NewStore constructs a Store over repo. Subscriptions listen on hub.
func NewStore(repo Repo, hub *Hub, opts ...StoreOption) *Store {
	if hub == nil {
		hub = NewHub()
	}
	s := &Store{
		repo:     repo,
		hub:      hub,
		notifier: hub,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hub returns the hub subscriptions listen on.
func (s *Store) Hub() *Hub {
	return s.hub
}

// Create stores a new record for ownerID with both timestamps set to now.
func (s *Store) Create(ctx context.Context, ownerID string, cv cvform.CV) (Record, error) {
	now := s.now()
	rec := Record{
		ID:        s.newID(),
		OwnerID:   ownerID,
		CV:        cv.Clone(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return Record{}, fmt.Errorf("create resume: %w", err)
	}
	s.publish(ctx, Change{ID: rec.ID, OwnerID: ownerID})
	return rec, nil
}

// Update merges patch into the record and refreshes UpdatedAt.
func (s *Store) Update(ctx context.Context, id string, patch Patch) (Record, error) {
	rec, err := s.repo.Update(ctx, id, patch, s.now())
	if err != nil {
		return Record{}, fmt.Errorf("update resume %s: %w", id, err)
	}
	s.publish(ctx, Change{ID: rec.ID, OwnerID: rec.OwnerID})
	return rec, nil
}

// Delete removes the record.
func (s *Store) Delete(ctx context.Context, id string) error {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete resume %s: %w", id, err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete resume %s: %w", id, err)
	}
	s.publish(ctx, Change{ID: id, OwnerID: rec.OwnerID})
	return nil
}

// GetByID returns the record or an error wrapping ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id string) (Record, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Record{}, fmt.Errorf("get resume %s: %w", id, err)
	}
	return rec, nil
}

// ListByOwner returns the owner's records, most recently updated first.
func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]Record, error) {
	recs, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}
	return recs, nil
}

func (s *Store) publish(ctx context.Context, change Change) {
	err := s.notifier.Publish(context.WithoutCancel(ctx), change)
	if err == nil {
		return
	}
	telemetry.Error("resumes.publish_failed", map[string]any{
		"resume_id": change.ID,
		"error":     err.Error(),
	})
	// Local subscribers still see the write when the shared bus is down.
	if Notifier(s.hub) != s.notifier {
		s.hub.Dispatch(change)
	}
}

// Unsubscribe stops a subscription. Calling it more than once is a no-op.
type Unsubscribe func()

// Subscribe delivers the owner's record list to fn now and again after every
// later change to one of the owner's records. The subscription ends when
// Unsubscribe is called or ctx is done.
func (s *Store) Subscribe(ctx context.Context, ownerID string, fn func([]Record)) (Unsubscribe, error) {
	load := func(ctx context.Context) ([]Record, error) {
		return s.ListByOwner(ctx, ownerID)
	}
	return subscribe(ctx, s.hub, ownerTopic(ownerID), load, fn)
}

// SubscribeOne delivers the record to fn now and again after every later
// change to it. A nil record means it does not exist (or was deleted).
func (s *Store) SubscribeOne(ctx context.Context, id string, fn func(*Record)) (Unsubscribe, error) {
	load := func(ctx context.Context) (*Record, error) {
		rec, err := s.repo.GetByID(ctx, id)
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("get resume %s: %w", id, err)
		}
		return &rec, nil
	}
	return subscribe(ctx, s.hub, resumeTopic(id), load, fn)
}

// subscribe wires a coalescing reload loop to a hub topic. Deliveries are
// serialized on one goroutine; a burst of changes produces one reload.
func subscribe[T any](ctx context.Context, hub *Hub, topic string, load func(context.Context) (T, error), fn func(T)) (Unsubscribe, error) {
	pending := make(chan struct{}, 1)
	remove := hub.listen(topic, func() {
		select {
		case pending <- struct{}{}:
		default:
		}
	})

	initial, err := load(ctx)
	if err != nil {
		remove()
		return nil, err
	}
	fn(initial)

	done := make(chan struct{})
	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			remove()
			close(done)
		})
	}

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				unsubscribe()
				return
			case <-pending:
			}
			val, err := load(ctx)
			if err != nil {
				if ctx.Err() == nil {
					telemetry.Error("resumes.subscription_reload_failed", map[string]any{
						"topic": topic,
						"error": err.Error(),
					})
				}
				continue
			}
			select {
			case <-done:
				return
			default:
			}
			fn(val)
		}
	}()

	return unsubscribe, nil
}
