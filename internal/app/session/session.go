package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/heroiclabs/nakama-common/runtime"

	"hitstory/internal/app"
	"hitstory/internal/domain"
	"hitstory/internal/ports"
)

// DefaultKey is the snapshot key a single local game is stored under.
const DefaultKey = "hitstory_game_state"

// Result describes one dispatched action.
type Result struct {
	State    *domain.GameState
	Events   []app.Event
	Rejected error // non-nil when the action was a no-op
}

// Session owns the current game state, applies actions one at a time and
// mirrors every accepted state to a SnapshotPort.
type Session struct {
	mu     sync.Mutex
	svc    *app.Service
	store  ports.SnapshotPort
	key    string
	logger runtime.Logger
	state  *domain.GameState
}

// Option configures a Session.
type Option func(*Session)

// WithKey stores the snapshot under key instead of DefaultKey.
func WithKey(key string) Option {
	return func(s *Session) {
		if key != "" {
			s.key = key
		}
	}
}

// New creates a session holding a fresh game. Call Restore to resume a saved one.
func New(svc *app.Service, store ports.SnapshotPort, logger runtime.Logger, opts ...Option) *Session {
	s := &Session{
		svc:    svc,
		store:  store,
		key:    DefaultKey,
		logger: logger,
		state:  domain.NewGameState(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the snapshot key.
func (s *Session) Key() string {
	return s.key
}

// State returns a copy of the current state.
func (s *Session) State() *domain.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Restore loads the stored snapshot, if any. A missing or corrupt snapshot
// leaves a fresh game and reports false; only storage failures are errors.
func (s *Session) Restore(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.store.Get(ctx, s.key)
	if errors.Is(err, ports.ErrSnapshotNotFound) {
		s.logger.Info("no snapshot under %s, starting fresh", s.key)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load snapshot: %w", err)
	}

	saved, err := Decode(data)
	if err != nil {
		s.logger.Warn("ignoring snapshot under %s: %v", s.key, err)
		return false, nil
	}
	next, _, err := s.svc.Apply(s.state, app.RestoreState{State: saved})
	if err != nil {
		s.logger.Warn("ignoring snapshot under %s: %v", s.key, err)
		return false, nil
	}
	s.state = next
	s.logger.WithFields(map[string]interface{}{
		"phase":   string(next.Phase),
		"players": len(next.Players),
	}).Info("restored game")
	return true, nil
}

// Dispatch applies action. A rejected action is not an error: the state is
// left as is and Result.Rejected carries the reason. The returned error
// reports a failure to persist an accepted state; the in-memory state has
// still advanced.
func (s *Session) Dispatch(ctx context.Context, action app.Action) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, events, rejected := s.svc.Apply(s.state, action)
	if rejected != nil {
		kind := "nil"
		if action != nil {
			kind = string(action.Kind())
		}
		s.logger.WithField("action", kind).Debug("action rejected: %v", rejected)
		return Result{State: s.state.Clone(), Rejected: rejected}, nil
	}

	s.state = next
	res := Result{State: next.Clone(), Events: events}
	if err := s.persist(ctx); err != nil {
		s.logger.WithField("action", string(action.Kind())).Error("persist state: %v", err)
		return res, err
	}
	return res, nil
}

// NewGame discards the current game and its snapshot.
func (s *Session) NewGame(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = domain.NewGameState()
	if err := s.store.Clear(ctx, s.key); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	return nil
}

// persist writes the current state, or clears the snapshot once no player is left.
func (s *Session) persist(ctx context.Context) error {
	if len(s.state.Players) == 0 {
		if err := s.store.Clear(ctx, s.key); err != nil {
			return fmt.Errorf("clear snapshot: %w", err)
		}
		return nil
	}
	data, err := Encode(s.state)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
