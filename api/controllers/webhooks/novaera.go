package webhooks

import (
	"context"
	"io"
	"net/http"

	"github.com/angelmondragon/trackwise-backend/api/responses"
	novaerawebhook "github.com/angelmondragon/trackwise-backend/internal/webhooks/novaera"
	pkgerrors "github.com/angelmondragon/trackwise-backend/pkg/errors"
	"github.com/angelmondragon/trackwise-backend/pkg/logger"
)

const maxWebhookBody = 1 << 20

// EventHandler applies one raw NovaEra postback.
type EventHandler interface {
	HandleEvent(ctx context.Context, body []byte) (novaerawebhook.Result, error)
}

// NovaEraWebhook reads the raw postback and hands it to the reconciler.
func NovaEraWebhook(handler EventHandler, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if handler == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInvalidPayload, err, "Payload inválido"))
			return
		}

		result, err := handler.HandleEvent(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
