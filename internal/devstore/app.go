package devstore

import (
	"net/http"

	"CatalogDesk/pkg/kit"
)

type HTTPDeps = kit.RouterDeps

// NewHandler serves the product contract consumed by internal/remote.
func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	r := kit.NewRouter(deps)
	r.Mount("/", s.Routes())
	return r
}
