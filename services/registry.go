package services

import (
	"context"
	"sync"
	"time"

	"orgconsole/repository"
	"orgconsole/session"
	"orgconsole/utils/logger"

	"github.com/google/uuid"
)

// RepositoryFactory builds repositories whose transport reads the token from tokens
type RepositoryFactory func(tokens session.TokenStore) repository.RepositoryContainerInterface

// Registry holds one Console per browser session
type Registry struct {
	mu       sync.RWMutex
	consoles map[string]*Console
	factory  RepositoryFactory
	logger   logger.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(factory RepositoryFactory, log logger.Logger) *Registry {
	return &Registry{
		consoles: make(map[string]*Console),
		factory:  factory,
		logger:   log,
	}
}

// Create starts a console seeded with token (possibly empty) and mounts it
func (r *Registry) Create(ctx context.Context, token string) *Console {
	tokens := session.NewMemoryStore(token)
	console := NewConsole(uuid.NewString(), r.factory(tokens), tokens, r.logger)
	console.Mount(ctx)

	r.mu.Lock()
	r.consoles[console.ID()] = console
	r.mu.Unlock()

	r.logger.Debugf("Console %s created", console.ID())
	return console
}

// Get returns the console with the given id
func (r *Registry) Get(id string) (*Console, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	console, ok := r.consoles[id]
	return console, ok
}

// Remove drops a console
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.consoles, id)
	r.mu.Unlock()
}

// Len returns the number of live consoles
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.consoles)
}

// Sweep evicts consoles idle for longer than idle and returns how many were removed.
// Consoles are inspected outside the registry lock.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)

	r.mu.RLock()
	consoles := make([]*Console, 0, len(r.consoles))
	for _, console := range r.consoles {
		consoles = append(consoles, console)
	}
	r.mu.RUnlock()

	var stale []*Console
	for _, console := range consoles {
		if console.LastSeen().Before(cutoff) {
			stale = append(stale, console)
		}
	}
	if len(stale) == 0 {
		return 0
	}

	evicted := 0
	r.mu.Lock()
	for _, console := range stale {
		if current, ok := r.consoles[console.ID()]; ok && current == console && console.LastSeen().Before(cutoff) {
			delete(r.consoles, console.ID())
			evicted++
		}
	}
	r.mu.Unlock()
	return evicted
}
