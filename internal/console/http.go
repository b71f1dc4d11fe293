package console

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"CatalogDesk/internal/catalog"
	"CatalogDesk/pkg/kit"
)

const (
	maxBodyBytes = 1 << 20

	readyTimeout = 2 * time.Second
)

// Remote is the part of the remote store the console reads directly.
type Remote interface {
	GetProduct(ctx context.Context, id int) (catalog.Product, error)
	Ping(ctx context.Context) error
}

type Server struct {
	Store   *catalog.Store
	Mutator *catalog.Mutator
	Remote  Remote
	Log     *zap.Logger
	Limiter *kit.IPRateLimiter

	// StaleAfter is how long a loaded snapshot is served before the next
	// list request reloads it.
	StaleAfter          time.Duration
	ReloadAfterMutation bool

	// Now defaults to time.Now; it must agree with the Store's clock.
	Now func() time.Time

	busy    *inflight
	reloads singleflight.Group
}

func (s *Server) Routes() http.Handler {
	if s.busy == nil {
		s.busy = newInflight()
	}

	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", s.readyz)

	r.Get("/products", s.list)
	r.Get("/categories", s.categories)
	r.Post("/catalog/reload", s.reload)
	r.Get("/products/{id}", s.detail)
	r.Get("/products/{id}/draft", s.draft)

	r.Group(func(mr chi.Router) {
		if s.Limiter != nil {
			mr.Use(s.Limiter.Middleware)
		}
		mr.Post("/products", s.create)
		mr.Put("/products/{id}", s.update)
		mr.Delete("/products/{id}", s.delete)
	})

	return r
}

func (s *Server) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Server) log() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.Remote.Ping(ctx); err != nil {
		s.log().Warn("readyz failed: remote store", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "remote store not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// ensureFresh loads the catalog when it was never loaded or went stale.
// Concurrent callers share one reload. A failed reload over an existing
// snapshot is reported as stale, not as an error.
func (s *Server) ensureFresh(ctx context.Context) (stale bool, err error) {
	if !s.Store.Stale(s.StaleAfter) {
		return false, nil
	}

	_, err, _ = s.reloads.Do("catalog", func() (any, error) {
		if !s.Store.Stale(s.StaleAfter) {
			return nil, nil
		}
		_, err := s.Store.Reload(context.WithoutCancel(ctx))
		return nil, err
	})
	if err != nil {
		if !s.Store.Loaded() {
			return false, err
		}
		s.log().Warn("serving stale catalog", zap.Error(err))
		return true, nil
	}
	return false, nil
}

// maxAge is what is left of the snapshot's freshness window.
func (s *Server) maxAge(snap catalog.Snapshot) time.Duration {
	if s.StaleAfter <= 0 {
		return 0
	}
	return max(s.StaleAfter-s.now().Sub(snap.LoadedAt), 0)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	stale, err := s.ensureFresh(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	snap, err := s.Store.Snapshot()
	if err != nil {
		kit.WriteError(w, r, http.StatusServiceUnavailable, "catalog not loaded", nil)
		return
	}

	crit, err := parseCriteria(r.URL.Query(), snap.Bounds)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad criteria", map[string]any{"cause": err.Error()})
		return
	}

	products := catalog.Filter(snap.Products, crit)

	if stale {
		kit.SetMaxAge(w, 0)
	} else {
		kit.SetMaxAge(w, s.maxAge(snap))
	}
	kit.WriteJSON(w, http.StatusOK, listResponse{
		Products:   newProductViews(products),
		Count:      len(products),
		Total:      len(snap.Products),
		Categories: categoryOptions(snap.Categories),
		Criteria:   crit,
		Bounds:     snap.Bounds,
		LoadedAt:   snap.LoadedAt,
		Stale:      stale,
	})
}

func (s *Server) categories(w http.ResponseWriter, r *http.Request) {
	if _, err := s.ensureFresh(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, categoryOptions(s.Store.Categories()))
}

func (s *Server) reload(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Store.Reload(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, reloadResponse{
		Products:   len(snap.Products),
		Categories: categoryOptions(snap.Categories),
		Bounds:     snap.Bounds,
		LoadedAt:   snap.LoadedAt,
	})
}

func (s *Server) detail(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	p, err := s.Remote.GetProduct(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, newProductView(p))
}

func (s *Server) draft(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	p, err := s.Remote.GetProduct(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, catalog.DraftFrom(p))
}

// Mutations run on a context detached from the request: once issued, a
// write runs to completion even if the caller goes away.

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	d, ok := decodeDraft(w, r)
	if !ok {
		return
	}

	ctx := context.WithoutCancel(r.Context())
	p, err := s.Mutator.Create(ctx, d)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.afterMutation(ctx)
	pv := newProductView(p)
	kit.WriteJSON(w, http.StatusCreated, mutationResponse{Product: &pv, NavigateTo: "/"})
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	d, ok := decodeDraft(w, r)
	if !ok {
		return
	}

	release, ok := s.busy.acquire(id)
	if !ok {
		kit.WriteError(w, r, http.StatusConflict, "operation in flight", map[string]any{"id": id})
		return
	}
	defer release()

	ctx := context.WithoutCancel(r.Context())
	p, err := s.Mutator.Update(ctx, id, d)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.afterMutation(ctx)
	pv := newProductView(p)
	kit.WriteJSON(w, http.StatusOK, mutationResponse{Product: &pv, NavigateTo: fmt.Sprintf("/product/%d", id)})
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	release, ok := s.busy.acquire(id)
	if !ok {
		kit.WriteError(w, r, http.StatusConflict, "operation in flight", map[string]any{"id": id})
		return
	}
	defer release()

	ctx := context.WithoutCancel(r.Context())
	if err := s.Mutator.Delete(ctx, id); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.afterMutation(ctx)
	kit.WriteJSON(w, http.StatusOK, mutationResponse{NavigateTo: "/"})
}

func (s *Server) afterMutation(ctx context.Context) {
	if !s.ReloadAfterMutation {
		return
	}
	if _, err := s.Store.Reload(ctx); err != nil {
		s.log().Warn("reload after mutation failed", zap.Error(err))
	}
}

func productID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "bad id", map[string]any{"id": raw})
		return 0, false
	}
	return id, true
}

func decodeDraft(w http.ResponseWriter, r *http.Request) (catalog.Draft, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req draftRequest
	if err := dec.Decode(&req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return catalog.Draft{}, false
	}
	return req.draft(), true
}

// parseCriteria reads q, category, min_price and max_price. Missing values
// fall back to the permissive criteria for b.
func parseCriteria(q url.Values, b catalog.PriceBounds) (catalog.Criteria, error) {
	c := catalog.DefaultCriteria(b)
	c.SearchText = q.Get("q")

	if cat := strings.TrimSpace(q.Get("category")); cat != "" {
		c.Category = cat
	}

	var err error
	if c.MinPrice, err = parsePrice(q, "min_price", c.MinPrice); err != nil {
		return catalog.Criteria{}, err
	}
	if c.MaxPrice, err = parsePrice(q, "max_price", c.MaxPrice); err != nil {
		return catalog.Criteria{}, err
	}
	return c, nil
}

func parsePrice(q url.Values, key string, def float64) (float64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s: not a finite number", key)
	}
	return v, nil
}
