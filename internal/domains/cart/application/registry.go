package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"github.com/llmndev/perfume-storefront/internal/domains/cart/domain"
	"github.com/llmndev/perfume-storefront/internal/domains/cart/ports"
)

// DefaultRegistrySize caps the number of shopper sessions held at once.
const DefaultRegistrySize = 1024

// Factory builds the synchronizer for a user.
type Factory func(userID int64) (ports.Synchronizer, error)

// Registry holds one synchronizer per shopper. A synchronizer is mounted (created and
// loaded) on first use and discarded on release or when evicted by newer sessions.
type Registry struct {
	factory Factory
	logger  *slog.Logger

	mu       sync.Mutex
	sessions *lru.Cache
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger used for session lifecycle events.
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry builds a registry bounded to size sessions.
func NewRegistry(size int, factory Factory, opts ...RegistryOption) (*Registry, error) {
	if factory == nil {
		return nil, errors.New("synchronizer factory is nil")
	}
	if size <= 0 {
		size = DefaultRegistrySize
	}
	r := &Registry{
		factory: factory,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	sessions, err := lru.NewWithEvict(size, r.onEvicted)
	if err != nil {
		return nil, err
	}
	r.sessions = sessions
	return r, nil
}

// For returns the user's synchronizer, mounting it with an initial refresh when the
// user has no live session. Concurrent calls for a user being mounted wait for that
// mount. A failed mount leaves no session behind.
func (r *Registry) For(ctx context.Context, userID int64) (ports.Synchronizer, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return nil, mapError(err)
	}
	r.mu.Lock()
	if existing, ok := r.sessions.Get(userID); ok {
		r.mu.Unlock()
		return existing.(*session).await(ctx)
	}
	synchronizer, err := r.factory(userID)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	sess := &session{synchronizer: synchronizer, ready: make(chan struct{})}
	r.sessions.Add(userID, sess)
	r.mu.Unlock()

	go r.mount(context.WithoutCancel(ctx), userID, sess)
	return sess.await(ctx)
}

// Release discards the user's synchronizer. It reports whether a session existed.
func (r *Registry) Release(userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions.Remove(userID)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	return r.sessions.Len()
}

var _ ports.Sessions = (*Registry)(nil)

// session is a registry entry; ready closes once the initial refresh has settled.
type session struct {
	synchronizer ports.Synchronizer
	ready        chan struct{}
	err          error
}

func (s *session) await(ctx context.Context) (ports.Synchronizer, error) {
	select {
	case <-s.ready:
		if s.err != nil {
			return nil, s.err
		}
		return s.synchronizer, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Registry) mount(ctx context.Context, userID int64, sess *session) {
	defer close(sess.ready)
	if err := sess.synchronizer.Refresh(ctx); err != nil {
		sess.err = err
		r.mu.Lock()
		if current, ok := r.sessions.Peek(userID); ok && current == sess {
			r.sessions.Remove(userID)
		}
		r.mu.Unlock()
		r.logger.LogAttrs(ctx, slog.LevelWarn, "cart session mount failed",
			slog.Int64("user.id", userID),
			slog.String("error", err.Error()))
		return
	}
	r.logger.LogAttrs(ctx, slog.LevelInfo, "cart session mounted", slog.Int64("user.id", userID))
}

func (r *Registry) onEvicted(key, _ any) {
	if userID, ok := key.(int64); ok {
		r.logger.Info("cart session discarded", slog.Int64("user.id", userID))
	}
}
