package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/LeDucTai-11/MyStore-BE/api/middleware"
	"github.com/LeDucTai-11/MyStore-BE/api/responses"
	pkgerrors "github.com/LeDucTai-11/MyStore-BE/pkg/errors"
	"github.com/LeDucTai-11/MyStore-BE/pkg/logger"
)

type PushServer interface {
	Serve(w http.ResponseWriter, r *http.Request, userID uuid.UUID)
}

// PushStream upgrades the request to a websocket bound to the caller.
func PushStream(hub PushServer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if hub == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "push hub unavailable"))
			return
		}

		userID, _, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}
		hub.Serve(w, r, userID)
	}
}
