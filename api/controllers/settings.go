package controllers

import (
	"net/http"

	"github.com/angelmondragon/trackwise-backend/api/middleware"
	"github.com/angelmondragon/trackwise-backend/api/responses"
	"github.com/angelmondragon/trackwise-backend/api/validators"
	"github.com/angelmondragon/trackwise-backend/internal/settings"
	pkgerrors "github.com/angelmondragon/trackwise-backend/pkg/errors"
	"github.com/angelmondragon/trackwise-backend/pkg/logger"
)

const msgSettingsUnavailable = "settings service unavailable"

// GetSettings returns the stored settings with secrets masked.
func GetSettings(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, msgSettingsUnavailable))
			return
		}

		masked, err := svc.Masked(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, masked)
	}
}

// UpdateSettings serves both POST and PUT.
func UpdateSettings(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, msgSettingsUnavailable))
			return
		}

		var body settings.UpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Update(r.Context(), body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithFields(r.Context(), map[string]any{
				"admin_id": middleware.UserIDFromContext(r.Context()),
				"admin":    middleware.UsernameFromContext(r.Context()),
				"keys":     changedKeys(body),
			}), "settings updated")
		}
		responses.WriteMessage(w, settings.MsgUpdated)
	}
}

func ReloadSettings(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, msgSettingsUnavailable))
			return
		}

		if _, err := svc.Reload(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithField(r.Context(), "admin", middleware.UsernameFromContext(r.Context())), "settings reloaded")
		}
		responses.WriteMessage(w, settings.MsgReloaded)
	}
}

// changedKeys names the settings present in req. Values stay out of logs.
func changedKeys(req settings.UpdateRequest) []string {
	keys := make([]string, 0, 3)
	if req.NovaeraSk != nil {
		keys = append(keys, "novaeraSk")
	}
	if req.NovaeraPk != nil {
		keys = append(keys, "novaeraPk")
	}
	if req.NovaeraPostbackURL != nil {
		keys = append(keys, "novaeraPostbackUrl")
	}
	return keys
}
