package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/angelmondragon/trackwise-backend/api/responses"
	pkgauth "github.com/angelmondragon/trackwise-backend/pkg/auth"
	"github.com/angelmondragon/trackwise-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/trackwise-backend/pkg/errors"
	"github.com/angelmondragon/trackwise-backend/pkg/logger"
)

const (
	msgTokenRequired = "Token de acesso necessário"
	msgTokenInvalid  = "Token inválido"
)

// Auth validates a bearer token and seeds the request context with the admin
// identity. A missing token is 401, a bad one 403.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, msgTokenRequired))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeForbidden, err, msgTokenInvalid))
				return
			}

			ctx := WithUser(r.Context(), claims.UserID, claims.Username)
			if logg != nil {
				ctx = logg.WithUserID(ctx, strconv.FormatInt(claims.UserID, 10))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) string {
	raw := strings.TrimSpace(header)
	if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return ""
}
