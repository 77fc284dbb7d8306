package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/trackwise-backend/api/middleware"
	"github.com/angelmondragon/trackwise-backend/api/responses"
	"github.com/angelmondragon/trackwise-backend/api/validators"
	"github.com/angelmondragon/trackwise-backend/internal/auth"
	pkgerrors "github.com/angelmondragon/trackwise-backend/pkg/errors"
	"github.com/angelmondragon/trackwise-backend/pkg/logger"
)

// AuthLogin exchanges admin credentials for a bearer token. Rejected attempts
// are logged with the username and client address, never the password.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var creds auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &creds); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		session, err := svc.Login(ctx, creds)
		if err == nil {
			responses.WriteSuccess(w, session)
			return
		}

		if logg != nil && pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
			logg.Warn(logg.WithFields(ctx, map[string]any{
				"username":  strings.TrimSpace(creds.Username),
				"remote_ip": middleware.ClientIP(r),
			}), "login rejected")
		}
		responses.WriteError(ctx, logg, w, err)
	}
}
