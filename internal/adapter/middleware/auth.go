package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"ict-ticketing/internal/domain/apperr"
	"ict-ticketing/internal/domain/user"
	"ict-ticketing/internal/usecase/auth"
)

const userContextKey = "auth.user"

type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, token string) (*user.User, error)
}

// Authenticate resolves the Bearer token and stores the caller on the context.
// Token problems stop the chain with 401; store failures with 500.
func Authenticate(resolver IdentityResolver, log *zap.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			u, err := resolver.ResolveIdentity(c.Request().Context(), token)
			if err != nil {
				if apperr.KindOf(err) == apperr.KindInternal {
					log.Error("identity resolution failed", zap.Error(err))
				}
				return deny(c, err)
			}
			c.Set(userContextKey, u)
			return next(c)
		}
	}
}

// RequireRole lets the request through only when the caller holds at least min.
// It must run after Authenticate; without an identity it fails closed.
func RequireRole(min user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := auth.Authorize(CurrentUser(c), min); err != nil {
				return deny(c, err)
			}
			return next(c)
		}
	}
}

func CurrentUser(c echo.Context) *user.User {
	u, _ := c.Get(userContextKey).(*user.User)
	return u
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func deny(c echo.Context, err error) error {
	kind := apperr.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case apperr.KindAuthentication:
		status = http.StatusUnauthorized
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	case apperr.KindAuthorization:
		status = http.StatusForbidden
	}
	return c.JSON(status, map[string]string{"error": apperr.MessageOf(err), "kind": string(kind)})
}
