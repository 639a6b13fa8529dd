// Package memory is an in-process store for local runs and tests. It keeps
// insertion order and issues ids of the same shape as the document store.
package memory

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ariefcatur/go-ecommerce-catalog/internal/catalog"
)

type Store struct {
	mu          sync.RWMutex
	products    []catalog.Product
	orders      []catalog.Order
	unavailable bool
}

func New() *Store { return &Store{} }

// SetUnavailable makes every operation fail with catalog.ErrUnavailable until reset.
func (s *Store) SetUnavailable(v bool) {
	s.mu.Lock()
	s.unavailable = v
	s.mu.Unlock()
}

// DeleteProduct removes a product. Orders that reference it are left untouched.
func (s *Store) DeleteProduct(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.products {
		if p.ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Store) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.check()
}

func (s *Store) check() error {
	if s.unavailable {
		return catalog.ErrUnavailable
	}
	return nil
}

func (s *Store) ValidID(id string) bool { return primitive.IsValidObjectID(id) }

func (s *Store) InsertProduct(_ context.Context, p catalog.Product) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return "", err
	}
	p.ID = primitive.NewObjectID().Hex()
	p.Sizes = append([]catalog.Size(nil), p.Sizes...)
	s.products = append(s.products, p)
	return p.ID, nil
}

func (s *Store) FindProducts(_ context.Context, f catalog.ProductFilter, page catalog.Page) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}
	match, err := matcher(f)
	if err != nil {
		return nil, err
	}
	var all []catalog.Product
	for _, p := range s.products {
		if match(p) {
			all = append(all, p)
		}
	}
	return window(all, page), nil
}

func (s *Store) CountProducts(_ context.Context, f catalog.ProductFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return 0, err
	}
	match, err := matcher(f)
	if err != nil {
		return 0, err
	}
	var n int64
	for _, p := range s.products {
		if match(p) {
			n++
		}
	}
	return n, nil
}

func (s *Store) FindProductsByIDs(_ context.Context, ids []string) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []catalog.Product
	for _, p := range s.products {
		if _, ok := want[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) InsertOrder(_ context.Context, o catalog.Order) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return "", err
	}
	o.ID = primitive.NewObjectID().Hex()
	o.Items = append([]catalog.OrderItem(nil), o.Items...)
	s.orders = append(s.orders, o)
	return o.ID, nil
}

func (s *Store) FindOrdersByUser(_ context.Context, userID string, page catalog.Page) ([]catalog.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}
	var all []catalog.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			all = append(all, o)
		}
	}
	return window(all, page), nil
}

func (s *Store) CountOrdersByUser(_ context.Context, userID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return 0, err
	}
	var n int64
	for _, o := range s.orders {
		if o.UserID == userID {
			n++
		}
	}
	return n, nil
}

// OrderCount returns the number of stored orders across all users.
func (s *Store) OrderCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

func matcher(f catalog.ProductFilter) (func(catalog.Product) bool, error) {
	var re *regexp.Regexp
	if f.Name != "" {
		var err error
		if re, err = regexp.Compile("(?i)" + f.Name); err != nil {
			return nil, fmt.Errorf("%w: invalid name pattern: %v", catalog.ErrInvalidInput, err)
		}
	}
	return func(p catalog.Product) bool {
		if re != nil && !re.MatchString(p.Name) {
			return false
		}
		if f.Size == "" {
			return true
		}
		for _, sz := range p.Sizes {
			if sz.Size == f.Size {
				return true
			}
		}
		return false
	}, nil
}

func window[T any](all []T, page catalog.Page) []T {
	if page.Offset >= len(all) {
		return []T{}
	}
	end := len(all)
	if page.Limit > 0 && page.Offset+page.Limit < end {
		end = page.Offset + page.Limit
	}
	return append([]T(nil), all[page.Offset:end]...)
}
