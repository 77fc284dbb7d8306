package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	pkgerrors "github.com/angelmondragon/trackwise-backend/pkg/errors"
	"github.com/angelmondragon/trackwise-backend/pkg/logger"
	"github.com/angelmondragon/trackwise-backend/pkg/types"
)

// WriteSuccess writes body as a flat JSON object with status 200.
func WriteSuccess(w http.ResponseWriter, body any) {
	WriteSuccessStatus(w, http.StatusOK, body)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, body any) {
	writeJSON(w, status, body)
}

// WriteMessage writes {"message": msg}.
func WriteMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, types.MessageBody{Message: msg})
}

// WriteError maps err onto its code metadata, logs the flattened chain and
// writes {"error", "code", "details"}. Internal failures never expose their
// message.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	switch typed.Code() {
	case pkgerrors.CodeInternal, pkgerrors.CodeDependency:
	default:
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	payload := types.ErrorBody{
		Error: msg,
		Code:  string(typed.Code()),
	}
	if meta.DetailsAllowed {
		if details := typed.Details(); details != nil {
			payload.Details = details
		}
	}

	if logg != nil {
		dump := pkgerrors.Dump(err)
		ctx = logg.WithFields(ctx, map[string]any{
			"error":         dump.TopMessage,
			"error_code":    dump.Code,
			"error_chain":   dump.Chain,
			"http_status":   meta.HTTPStatus,
			"db_driver":     dump.DBDriver,
			"db_code":       dump.DBCode,
			"db_constraint": dump.DBConstraint,
			"db_table":      dump.DBTable,
			"db_detail":     dump.DBDetail,
		})
		if meta.HTTPStatus >= http.StatusInternalServerError {
			logg.Error(ctx, "request.error", err)
		} else {
			logg.Warn(ctx, "request.rejected")
		}
	}

	writeJSON(w, meta.HTTPStatus, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}
