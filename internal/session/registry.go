package session

import (
	"sort"
	"sync"

	"edabench/domain/core"
	"edabench/domain/dataset"
	"edabench/internal/config"
	"edabench/internal/logging"

	"go.uber.org/zap"
)

// Registry tracks open sessions by ID
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*Session
	cfg      *config.Config
	logger   *zap.Logger
}

// NewRegistry creates an empty registry whose sessions share cfg and logger
func NewRegistry(cfg *config.Config, logger *zap.Logger) *Registry {
	return &Registry{
		sessions: make(map[core.SessionID]*Session),
		cfg:      cfg,
		logger:   logging.OrNop(logger),
	}
}

// Open starts a session over ds and registers it
func (r *Registry) Open(ds *dataset.Dataset) *Session {
	s := New(ds, r.cfg, r.logger)
	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()
	return s
}

// Get returns the session with the given ID
func (r *Registry) Get(id core.SessionID) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, core.NewNotFoundError("session", id.String())
	}
	return s, nil
}

// Close discards a session and everything derived in it
func (r *Registry) Close(id core.SessionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return core.NewNotFoundError("session", id.String())
	}
	delete(r.sessions, id)
	r.logger.Info("session closed", zap.String("session", id.String()))
	return nil
}

// List returns a snapshot of every open session, oldest first
func (r *Registry) List() []Info {
	r.mu.RLock()
	open := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		open = append(open, s)
	}
	r.mu.RUnlock()

	out := make([]Info, len(open))
	for i, s := range open {
		out[i] = s.Info()
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].CreatedAt, out[j].CreatedAt
		if a.Before(b) || b.Before(a) {
			return a.Before(b)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
