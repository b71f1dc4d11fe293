package console

import (
	"net/http"

	"CatalogDesk/pkg/kit"
)

type HTTPDeps = kit.RouterDeps

func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	r := kit.NewRouter(deps)
	r.Mount("/", s.Routes())
	return r
}
