package console

import (
	"context"
	"errors"
	"net"
	"net/http"

	"go.uber.org/zap"

	"CatalogDesk/internal/catalog"
	"CatalogDesk/pkg/kit"
)

// writeError turns a core error into the console's HTTP answer. The core
// only classifies; messages are chosen here.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *catalog.ValidationError

	switch {
	case errors.As(err, &ve):
		kit.WriteError(w, r, http.StatusBadRequest, "validation failed", map[string]any{"fields": ve.Fields})
	case errors.Is(err, catalog.ErrNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "not found", nil)
	case isTimeoutErr(err):
		kit.WriteError(w, r, http.StatusGatewayTimeout, "remote store timeout", nil)
	case errors.Is(err, catalog.ErrUnavailable):
		kit.WriteError(w, r, http.StatusServiceUnavailable, "remote store unavailable", nil)
	case errors.Is(err, catalog.ErrBadStatus):
		kit.WriteError(w, r, http.StatusBadGateway, "remote store error", map[string]any{
			"status": catalog.StatusOf(err),
			"cause":  err.Error(),
		})
	case errors.Is(err, catalog.ErrBadPayload):
		kit.WriteError(w, r, http.StatusBadGateway, "remote store bad payload", nil)
	default:
		s.log().Error("unclassified error", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}

func isTimeoutErr(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
