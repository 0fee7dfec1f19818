package auth

import (
	"errors"
	"strings"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/mini_shop/internal/logging"
	"github.com/Skotchmaster/mini_shop/internal/service"
)

const identityKey = "identity"

type Verifier interface {
	Verify(token string) (*service.Identity, error)
}

// RequireAuth reads the raw token from the Authorization header and stores the
// verified identity in the context. A missing header is ErrMissingToken, any
// other failure ErrInvalidToken.
func RequireAuth(v Verifier) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  identityKey,
		TokenLookup: "header:" + echo.HeaderAuthorization,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			id, err := v.Verify(auth)
			if err != nil {
				return nil, err
			}
			return id, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			l := logging.FromContext(c.Request().Context())
			if strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization)) == "" ||
				errors.Is(err, service.ErrMissingToken) {
				l.Warn("auth_error", "status", 401, "reason", "missing token")
				return service.ErrMissingToken
			}
			l.Warn("auth_error", "status", 403, "error", err)
			if errors.Is(err, service.ErrInvalidToken) {
				return err
			}
			return service.ErrInvalidToken
		},
	})
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := IdentityFrom(c)
		if id == nil {
			return service.ErrMissingToken
		}
		if !id.IsAdmin() {
			logging.FromContext(c.Request().Context()).Warn("auth_error", "status", 403, "user_id", id.ID, "role", id.Role)
			return service.ErrForbidden
		}
		return next(c)
	}
}

// IdentityFrom returns the identity stored by RequireAuth, or nil.
func IdentityFrom(c echo.Context) *service.Identity {
	id, _ := c.Get(identityKey).(*service.Identity)
	return id
}
