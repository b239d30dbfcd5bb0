package auth

import (
	"crypto/subtle"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/bcrypt"

	"vitastore.GO/config"
)

// Middleware returns the auth middleware selected by AUTH_TYPE: basic (default), key or jwt.
func Middleware() echo.MiddlewareFunc {
	skipper := buildSkipper()
	switch os.Getenv("AUTH_TYPE") {
	case "key":
		return keyAuth(os.Getenv("API_KEY"), skipper)
	case "jwt":
		return jwtAuth([]byte(os.Getenv("JWT_SECRET")), skipper)
	default:
		return basicAuth(os.Getenv("API_USER"), os.Getenv("API_PASS"), os.Getenv("API_PASS_HASH"), skipper)
	}
}

func buildSkipper() middleware.Skipper {
	skipPaths := config.GetAuthSkipperPaths()
	return func(c echo.Context) bool {
		path := c.Path()
		for _, skip := range skipPaths {
			if path == skip {
				return true
			}
		}
		return false
	}
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// basicAuth checks the password against a bcrypt hash when one is set,
// otherwise against the plain API_PASS.
func basicAuth(user, pass, hash string, skipper middleware.Skipper) echo.MiddlewareFunc {
	return middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
		Validator: func(username, password string, c echo.Context) (bool, error) {
			if user == "" || !equal(username, user) {
				return false, nil
			}
			if hash != "" {
				return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil, nil
			}
			return pass != "" && equal(password, pass), nil
		},
		Skipper: skipper,
	})
}

func keyAuth(apiKey string, skipper middleware.Skipper) echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		Validator: func(key string, c echo.Context) (bool, error) {
			return apiKey != "" && equal(key, apiKey), nil
		},
		Skipper: skipper,
	})
}

// jwtAuth accepts HS256 bearer tokens signed with secret and exposes the
// subject as "user" on the context.
func jwtAuth(secret []byte, skipper middleware.Skipper) echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		KeyLookup:  "header:" + echo.HeaderAuthorization,
		AuthScheme: "Bearer",
		Validator: func(raw string, c echo.Context) (bool, error) {
			claims, err := ParseToken(secret, raw)
			if err != nil {
				return false, nil
			}
			sub, _ := claims.GetSubject()
			c.Set("user", sub)
			return true, nil
		},
		Skipper: skipper,
	})
}

// ParseToken validates an HS256 token and returns its registered claims.
func ParseToken(secret []byte, raw string) (*jwt.RegisteredClaims, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("jwt secret not configured")
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// IssueToken signs an HS256 token for subject; used by tooling and tests.
func IssueToken(secret []byte, subject string, claims jwt.RegisteredClaims) (string, error) {
	claims.Subject = subject
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
