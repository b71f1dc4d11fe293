package devstore

import (
	"context"
	"errors"

	"CatalogDesk/internal/catalog"
)

var ErrInvalidProduct = errors.New("invalid product")

// Store is the backend of the development product store.
type Store interface {
	Ping(ctx context.Context) error
	List(ctx context.Context) ([]catalog.Product, error)
	Get(ctx context.Context, id int) (catalog.Product, bool, error)
	Create(ctx context.Context, in catalog.Payload) (catalog.Product, error)
	Replace(ctx context.Context, id int, in catalog.Payload) (catalog.Product, bool, error)
	Delete(ctx context.Context, id int) (catalog.Product, bool, error)
}

var (
	_ Store = (*MemStore)(nil)
	_ Store = (*PostgresStore)(nil)
)
