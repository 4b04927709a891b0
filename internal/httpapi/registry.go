package httpapi

import (
	"sync"

	"github.com/google/uuid"

	"github.com/usmanz-dev/nova-pos-terminal/internal/checkout"
)

// Registry tracks the live checkout sessions of this terminal process, one
// per open screen.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*checkout.Session

	catalog checkout.Catalog
	sales   checkout.SalesAPI
}

func NewRegistry(catalog checkout.Catalog, sales checkout.SalesAPI) *Registry {
	return &Registry{
		sessions: make(map[string]*checkout.Session),
		catalog:  catalog,
		sales:    sales,
	}
}

func (r *Registry) Create() *checkout.Session {
	s := checkout.NewSession(uuid.New().String(), r.catalog, r.sales)

	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()
	return s
}

func (r *Registry) Get(id string) (*checkout.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}
