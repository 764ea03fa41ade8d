package auth

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// ContextKey is where the bearer middleware stores the token subject.
const ContextKey = "username"

const credentialsError = "Could not validate credentials"

type TokenVerifier interface {
	VerifyToken(token string) (string, error)
}

// RequireBearer accepts only requests carrying "Authorization: Bearer <token>"
// with a token the verifier accepts.
func RequireBearer(v TokenVerifier) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ContextKey:  ContextKey,
		ParseTokenFunc: func(_ echo.Context, token string) (any, error) {
			return v.VerifyToken(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
			return echo.NewHTTPError(http.StatusUnauthorized, credentialsError).SetInternal(err)
		},
	})
}

// Username returns the subject set by RequireBearer, or "" outside of it.
func Username(c echo.Context) string {
	u, _ := c.Get(ContextKey).(string)
	return u
}
