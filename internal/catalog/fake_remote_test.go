package catalog_test

import (
	"context"
	"sync"

	"CatalogDesk/internal/catalog"
)

// fakeRemote records every call; scripted errors are returned as-is.
type fakeRemote struct {
	mu sync.Mutex

	products []catalog.Product
	listErr  error
	writeErr error

	listCalls    int
	createCalls  int
	replaceCalls int
	deleteCalls  int
	lastPayload  catalog.Payload
}

func (f *fakeRemote) ListProducts(context.Context) ([]catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]catalog.Product(nil), f.products...), nil
}

func (f *fakeRemote) CreateProduct(_ context.Context, p catalog.Payload) (catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	f.lastPayload = p
	if f.writeErr != nil {
		return catalog.Product{}, f.writeErr
	}
	return catalog.Product{ID: 21, Title: p.Title, Price: p.Price, Description: p.Description, Category: p.Category, Image: p.Image}, nil
}

func (f *fakeRemote) ReplaceProduct(_ context.Context, id int, p catalog.Payload) (catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replaceCalls++
	f.lastPayload = p
	if f.writeErr != nil {
		return catalog.Product{}, f.writeErr
	}
	return catalog.Product{ID: id, Title: p.Title, Price: p.Price, Description: p.Description, Category: p.Category, Image: p.Image}, nil
}

func (f *fakeRemote) DeleteProduct(context.Context, int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	return f.writeErr
}

func (f *fakeRemote) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createCalls + f.replaceCalls + f.deleteCalls
}

func shirtAndCup() []catalog.Product {
	return []catalog.Product{
		{ID: 1, Title: "Shirt", Price: 20, Category: "men"},
		{ID: 2, Title: "Cup", Price: 5, Category: "home"},
	}
}

func validDraft() catalog.Draft {
	return catalog.Draft{
		Title:       "Lamp",
		Price:       "10",
		Description: "desk lamp",
		Image:       "https://example.com/lamp.png",
		Category:    "home",
	}
}
