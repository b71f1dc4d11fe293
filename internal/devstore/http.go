package devstore

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"CatalogDesk/internal/catalog"
	"CatalogDesk/pkg/kit"
)

const maxBodyBytes = 1 << 20

type Server struct {
	Store Store
	Log   *zap.Logger
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()

		if err := s.Store.Ping(ctx); err != nil {
			s.log().Warn("readyz failed", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/products", func(pr chi.Router) {
		pr.Get("/", s.list)
		pr.Post("/", s.create)
		pr.Get("/{id}", s.get)
		pr.Put("/{id}", s.replace)
		pr.Delete("/{id}", s.delete)
	})

	return r
}

func (s *Server) log() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	products, err := s.Store.List(r.Context())
	if err != nil {
		s.log().Error("list products failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	p, found, err := s.Store.Get(r.Context(), id)
	s.writeProduct(w, r, "get product failed", id, http.StatusOK, p, found, err)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	in, ok := decodePayload(w, r)
	if !ok {
		return
	}

	p, err := s.Store.Create(r.Context(), in)
	s.writeProduct(w, r, "create product failed", 0, http.StatusCreated, p, true, err)
}

func (s *Server) replace(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	in, ok := decodePayload(w, r)
	if !ok {
		return
	}

	p, found, err := s.Store.Replace(r.Context(), id, in)
	s.writeProduct(w, r, "replace product failed", id, http.StatusOK, p, found, err)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	p, found, err := s.Store.Delete(r.Context(), id)
	s.writeProduct(w, r, "delete product failed", id, http.StatusOK, p, found, err)
}

func (s *Server) writeProduct(w http.ResponseWriter, r *http.Request, msg string, id, status int, p catalog.Product, found bool, err error) {
	switch {
	case errors.Is(err, ErrInvalidProduct):
		kit.WriteError(w, r, http.StatusBadRequest, "invalid product", map[string]any{"cause": err.Error()})
	case err != nil:
		s.log().Error(msg, zap.Error(err), zap.Int("id", id))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	case !found:
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
	default:
		kit.WriteJSON(w, status, p)
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

// decodePayload applies the store's own rules: a title, a category and a
// non-negative price.
func decodePayload(w http.ResponseWriter, r *http.Request) (catalog.Payload, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var in catalog.Payload
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return catalog.Payload{}, false
	}

	var bad []string
	if strings.TrimSpace(in.Title) == "" {
		bad = append(bad, "title")
	}
	if strings.TrimSpace(in.Category) == "" {
		bad = append(bad, "category")
	}
	if in.Price < 0 {
		bad = append(bad, "price")
	}
	if len(bad) > 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "invalid product", map[string]any{"fields": bad})
		return catalog.Payload{}, false
	}
	return in, true
}
