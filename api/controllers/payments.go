package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/trackwise-backend/api/middleware"
	"github.com/angelmondragon/trackwise-backend/api/responses"
	"github.com/angelmondragon/trackwise-backend/api/validators"
	"github.com/angelmondragon/trackwise-backend/internal/payments"
	pkgerrors "github.com/angelmondragon/trackwise-backend/pkg/errors"
	"github.com/angelmondragon/trackwise-backend/pkg/logger"
	"github.com/angelmondragon/trackwise-backend/pkg/types"
)

const (
	providerNovaEra        = "novaera"
	msgProviderUnsupported = "Provedor não suportado"
	msgPaymentsUnavailable = "payment service unavailable"
)

// RegisterPayment creates or reuses a pending payment. A reused payment
// answers 200, a fresh one 201.
func RegisterPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, msgPaymentsUnavailable))
			return
		}

		var body payments.RegisterRequest
		if err := validators.DecodeJSONBodyLenient(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Register(r.Context(), body.Input(middleware.ClientIP(r)))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusCreated
		if result.Reused {
			status = http.StatusOK
		}
		responses.WriteSuccessStatus(w, status, result)
	}
}

// ConfirmPayment marks a payment paid by hand.
func ConfirmPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, msgPaymentsUnavailable))
			return
		}

		id, err := validators.ParsePathID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Confirm(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, payments.MsgConfirmed)
	}
}

func ListPayments(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, msgPaymentsUnavailable))
			return
		}

		result, err := svc.List(r.Context(), validators.ParsePage(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func DeleteAllPayments(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, msgPaymentsUnavailable))
			return
		}

		deleted, err := svc.DeleteAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, types.DeletedBody{Message: payments.MsgAllDeleted, Deleted: deleted})
	}
}

// ProviderTransaction proxies the upstream transaction document unchanged.
func ProviderTransaction(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, msgPaymentsUnavailable))
			return
		}

		provider := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "provider")))
		if provider != providerNovaEra {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, msgProviderUnsupported))
			return
		}

		raw, err := svc.ProviderTransaction(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(raw); err != nil && logg != nil {
			logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "write provider transaction")
		}
	}
}
