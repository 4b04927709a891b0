// Package catalog holds the terminal's read-only view of sellable products
// and categories: a snapshot fetched from the backend on screen entry and
// re-fetched after every completed sale.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/usmanz-dev/nova-pos-terminal/internal/domain"
)

// Backend fetches catalog data from the external API.
type Backend interface {
	FetchProducts(ctx context.Context) ([]domain.Product, error)
	FetchCategories(ctx context.Context) ([]domain.Category, error)
}

// Service is a read-through catalog. The cache layer is optional; without it
// every Load goes to the backend (guarded by singleflight).
type Service struct {
	backend Backend
	cache   Cache
	sfg     singleflight.Group // prevents fetch stampede on screen entry

	mu   sync.RWMutex
	snap *Snapshot
}

func NewService(backend Backend, cache Cache) *Service {
	return &Service{
		backend: backend,
		cache:   cache,
	}
}

// Load populates the in-memory snapshot, preferring the shared cache. Cache
// errors other than a miss are logged and fetching continues.
func (s *Service) Load(ctx context.Context) error {
	v, err, _ := s.sfg.Do("catalog", func() (interface{}, error) {
		if s.cache != nil {
			snap, err := s.cache.Get(ctx)
			if err == nil {
				return snap, nil
			}
			if !errors.Is(err, ErrCacheMiss) {
				log.Printf("catalog cache get error: %v", err)
			}
		}
		return s.fetch(ctx)
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.snap = v.(*Snapshot)
	s.mu.Unlock()
	return nil
}

// Refresh bypasses the cache, fetches fresh data and rewrites the cache.
// Called after a successful sale: stock levels changed at the backend.
func (s *Service) Refresh(ctx context.Context) error {
	snap, err := s.fetch(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	return nil
}

func (s *Service) fetch(ctx context.Context) (*Snapshot, error) {
	products, err := s.backend.FetchProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	categories, err := s.backend.FetchCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}

	snap := &Snapshot{
		Products:   sellable(products),
		Categories: categories,
		FetchedAt:  time.Now(),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, snap); err != nil {
			log.Printf("catalog cache set error: %v", err)
		}
	}
	return snap, nil
}

// sellable keeps active products with stock on hand.
func sellable(products []domain.Product) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.IsActive && p.Stock > 0 {
			out = append(out, p)
		}
	}
	return out
}

// Products filters the snapshot by free-text search (case-insensitive on
// name or SKU) and category id. Empty arguments match everything.
func (s *Service) Products(search, categoryID string) []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snap == nil {
		return nil
	}
	needle := strings.ToLower(search)
	out := make([]domain.Product, 0, len(s.snap.Products))
	for _, p := range s.snap.Products {
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.SKU), needle) {
			continue
		}
		if categoryID != "" && p.Category.ID != categoryID {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (s *Service) Categories() []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snap == nil {
		return nil
	}
	return append([]domain.Category(nil), s.snap.Categories...)
}

// Product looks up one product by id in the current snapshot.
func (s *Service) Product(id string) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snap == nil {
		return domain.Product{}, false
	}
	for _, p := range s.snap.Products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}
