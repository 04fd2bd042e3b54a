package jobs

import (
	"context"
	"sync"
)

type Handler func(ctx context.Context, t Task) error

type Registry struct {
	mu       sync.RWMutex
	handlers map[Kind]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[Kind]Handler)}
}

func (r *Registry) Register(kind Kind, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[kind] = h
}

func (r *Registry) Get(kind Kind) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[kind]
	return h, ok
}
