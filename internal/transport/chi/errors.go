package chi

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/whatthegovdoin/govlens/internal/domain"
	"github.com/whatthegovdoin/govlens/internal/logger"
)

// statusClientClosedRequest is the nginx convention for a caller that went away.
const statusClientClosedRequest = 499

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// defaultErrorHandlers maps domain sentinels to HTTP answers, most specific first.
// Validation and lookup errors carry caller-facing detail; the rest expose only the sentinel text.
var defaultErrorHandlers = []errorHandler{
	sentinelHandler(domain.ErrInvalidArgument, http.StatusBadRequest, true),
	sentinelHandler(domain.ErrNotFound, http.StatusNotFound, true),
	sentinelHandler(domain.ErrEmbeddingQuotaExceeded, http.StatusPaymentRequired, false),
	sentinelHandler(domain.ErrLLMQuotaExceeded, http.StatusPaymentRequired, false),
	sentinelHandler(domain.ErrGenerationFailed, http.StatusBadGateway, false),
	sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, false),
	sentinelHandler(domain.ErrUpstreamUnavailable, http.StatusBadGateway, false),
	sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, false),
	sentinelHandler(context.DeadlineExceeded, http.StatusGatewayTimeout, false),
	sentinelHandler(context.Canceled, statusClientClosedRequest, false),
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, exposeDetail bool) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		msg := sentinel.Error()
		if exposeDetail {
			msg = err.Error()
		}
		writeError(w, status, string(domain.KindOf(err)), msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("Request failed", zap.String("kind", string(domain.KindOf(err))), zap.Error(err))
			return
		}
	}
	log.Error("Internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, string(domain.KindInternal), "internal error")
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
