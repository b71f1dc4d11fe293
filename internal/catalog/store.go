package catalog

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Lister fetches the full product collection.
type Lister interface {
	ListProducts(ctx context.Context) ([]Product, error)
}

// Snapshot is one successfully loaded product collection. Values handed
// out by Store are copies; the held snapshot is never modified.
type Snapshot struct {
	Products   []Product
	Categories []string
	Bounds     PriceBounds
	LoadedAt   time.Time
}

func (s *Snapshot) copy() Snapshot {
	return Snapshot{
		Products:   cloneAll(s.Products),
		Categories: append([]string(nil), s.Categories...),
		Bounds:     s.Bounds,
		LoadedAt:   s.LoadedAt,
	}
}

type LoadHook func(products int, err error)

type StoreOption func(*Store)

func WithStoreLogger(log *zap.Logger) StoreOption {
	return func(s *Store) { s.log = log }
}

func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

func WithLoadHook(h LoadHook) StoreOption {
	return func(s *Store) { s.onLoad = h }
}

// Store holds the session's product snapshot and derives filtered views
// from it. A snapshot is replaced wholesale by each successful Load.
type Store struct {
	remote Lister
	log    *zap.Logger
	now    func() time.Time
	onLoad LoadHook

	seq atomic.Uint64

	mu      sync.RWMutex
	snap    *Snapshot
	applied uint64
	lastErr error
}

func NewStore(remote Lister, opts ...StoreOption) *Store {
	s := &Store{
		remote: remote,
		log:    zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches the collection and swaps it in. On failure the previous
// snapshot, if any, stays in place. A load that finishes after a newer one
// was applied is dropped and the newer snapshot is returned.
func (s *Store) Load(ctx context.Context) (Snapshot, error) {
	const op = "Store.Load"

	seq := s.seq.Add(1)
	ps, err := s.remote.ListProducts(ctx)
	if err != nil {
		s.mu.Lock()
		if seq > s.applied {
			s.lastErr = err
		}
		s.mu.Unlock()

		s.log.Warn("catalog load failed", zap.Uint64("seq", seq), zap.Error(err))
		s.hook(0, err)
		return Snapshot{}, fmt.Errorf("%s: %w", op, err)
	}

	next := &Snapshot{
		Products:   cloneAll(ps),
		Categories: distinctCategories(ps),
		Bounds:     boundsOf(ps),
		LoadedAt:   s.now(),
	}

	s.mu.Lock()
	if seq < s.applied {
		cur := s.snap.copy()
		s.mu.Unlock()
		s.log.Debug("catalog load superseded", zap.Uint64("seq", seq))
		return cur, nil
	}
	s.snap = next
	s.applied = seq
	s.lastErr = nil
	s.mu.Unlock()

	s.log.Info("catalog loaded",
		zap.Int("products", len(next.Products)),
		zap.Int("categories", len(next.Categories)),
	)
	s.hook(len(next.Products), nil)
	return next.copy(), nil
}

// Reload is Load under the name callers use once a snapshot exists.
func (s *Store) Reload(ctx context.Context) (Snapshot, error) {
	return s.Load(ctx)
}

func (s *Store) current() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Filter is a pure projection over the current snapshot.
func (s *Store) Filter(c Criteria) []Product {
	snap := s.current()
	if snap == nil {
		return []Product{}
	}
	return Filter(snap.Products, c)
}

func (s *Store) Categories() []string {
	snap := s.current()
	if snap == nil {
		return []string{}
	}
	return append([]string(nil), snap.Categories...)
}

func (s *Store) Bounds() PriceBounds {
	snap := s.current()
	if snap == nil {
		return PriceBounds{}
	}
	return snap.Bounds
}

// DefaultCriteria is the permissive criteria for the current bounds.
func (s *Store) DefaultCriteria() Criteria {
	return DefaultCriteria(s.Bounds())
}

// Snapshot returns a copy of the held snapshot, or ErrNotLoaded.
func (s *Store) Snapshot() (Snapshot, error) {
	snap := s.current()
	if snap == nil {
		return Snapshot{}, ErrNotLoaded
	}
	return snap.copy(), nil
}

func (s *Store) Loaded() bool {
	return s.current() != nil
}

// LastError is the error of the most recent load, nil once a later load
// succeeds.
func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Stale reports whether the snapshot is missing or older than maxAge.
// A non-positive maxAge never expires a loaded snapshot.
func (s *Store) Stale(maxAge time.Duration) bool {
	snap := s.current()
	if snap == nil {
		return true
	}
	if maxAge <= 0 {
		return false
	}
	return s.now().Sub(snap.LoadedAt) >= maxAge
}

func (s *Store) hook(n int, err error) {
	if s.onLoad != nil {
		s.onLoad(n, err)
	}
}
