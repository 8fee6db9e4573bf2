package auth

import (
	"sync"

	"github.com/rs/zerolog"
)

// Router remembers the route the operator was last sent to. The HTTP layer reads it to
// redirect the browser.
type Router struct {
	mu      sync.RWMutex
	current string
	log     zerolog.Logger
}

func NewRouter(initial string, log zerolog.Logger) *Router {
	return &Router{current: initial, log: log}
}

func (r *Router) Navigate(route string) {
	r.mu.Lock()
	prev := r.current
	r.current = route
	r.mu.Unlock()
	if prev != route {
		r.log.Debug().Str("from", prev).Str("to", route).Msg("navigate")
	}
}

func (r *Router) Current() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}
