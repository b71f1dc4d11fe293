package devstore

import (
	"context"
	"sync"

	"CatalogDesk/internal/catalog"
)

// MemStore keeps products in insertion order, like the public fake store.
type MemStore struct {
	mu     sync.RWMutex
	items  []catalog.Product
	nextID int
}

func NewMemStore(seed ...catalog.Product) *MemStore {
	s := &MemStore{nextID: 1}
	for _, p := range seed {
		if p.ID >= s.nextID {
			s.nextID = p.ID + 1
		}
		s.items = append(s.items, p)
	}
	return s
}

func (s *MemStore) Ping(context.Context) error { return nil }

func (s *MemStore) List(context.Context) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]catalog.Product, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *MemStore) Get(_ context.Context, id int) (catalog.Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.index(id)
	if i < 0 {
		return catalog.Product{}, false, nil
	}
	return s.items[i], true, nil
}

func (s *MemStore) Create(_ context.Context, in catalog.Payload) (catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := fromPayload(s.nextID, in)
	s.nextID++
	s.items = append(s.items, p)
	return p, nil
}

func (s *MemStore) Replace(_ context.Context, id int, in catalog.Payload) (catalog.Product, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return catalog.Product{}, false, nil
	}
	p := fromPayload(id, in)
	p.Rating = s.items[i].Rating
	s.items[i] = p
	return p, true, nil
}

func (s *MemStore) Delete(_ context.Context, id int) (catalog.Product, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return catalog.Product{}, false, nil
	}
	p := s.items[i]
	s.items = append(s.items[:i], s.items[i+1:]...)
	return p, true, nil
}

func (s *MemStore) index(id int) int {
	for i, p := range s.items {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func fromPayload(id int, in catalog.Payload) catalog.Product {
	return catalog.Product{
		ID:          id,
		Title:       in.Title,
		Price:       in.Price,
		Description: in.Description,
		Category:    in.Category,
		Image:       in.Image,
	}
}

// SampleProducts is the seed used by cmd/devstore and tests.
func SampleProducts() []catalog.Product {
	return []catalog.Product{
		{
			ID: 1, Title: "Fjallraven Foldsack No. 1 Backpack", Price: 109.95,
			Description: "Your perfect pack for everyday use and walks in the forest.",
			Category:    "men's clothing", Image: "https://example.com/img/1.jpg",
			Rating: &catalog.Rating{Rate: 3.9, Count: 120},
		},
		{
			ID: 2, Title: "Mens Casual Premium Slim Fit T-Shirts", Price: 22.3,
			Description: "Slim-fitting style, contrast raglan long sleeve.",
			Category:    "men's clothing", Image: "https://example.com/img/2.jpg",
			Rating: &catalog.Rating{Rate: 4.1, Count: 259},
		},
		{
			ID: 3, Title: "John Hardy Women's Legends Naga Bracelet", Price: 695,
			Description: "From our Legends Collection.",
			Category:    "jewelery", Image: "https://example.com/img/3.jpg",
			Rating: &catalog.Rating{Rate: 4.6, Count: 400},
		},
		{
			ID: 4, Title: "WD 2TB Elements Portable External Hard Drive", Price: 64,
			Description: "USB 3.0 and USB 2.0 compatibility.",
			Category:    "electronics", Image: "https://example.com/img/4.jpg",
			Rating: &catalog.Rating{Rate: 3.3, Count: 203},
		},
		{
			ID: 5, Title: "Opna Women's Short Sleeve Moisture", Price: 7.95,
			Description: "100% polyester, machine wash.",
			Category:    "women's clothing", Image: "https://example.com/img/5.jpg",
		},
	}
}
