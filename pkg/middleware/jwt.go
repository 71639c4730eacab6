/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package middleware

import (
	"context"
	"flag"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"

	"github.com/Juice-Labs/borrow/pkg/errors"
	"github.com/Juice-Labs/borrow/pkg/logger"
	pkgnet "github.com/Juice-Labs/borrow/pkg/net"
)

// CustomClaims contains custom data we want from the token.
type CustomClaims struct {
	Scope string `json:"scope"`
}

func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

func (c CustomClaims) HasScope(expected string) bool {
	for _, scope := range strings.Fields(c.Scope) {
		if scope == expected {
			return true
		}
	}

	return false
}

type Middleware = func(next http.Handler) http.Handler

var (
	ErrValidator = errors.New("middleware: failed to set up the jwt validator")

	disableTokenValidation = flag.Bool("disable-token-validation", false, "Disables token validation, all requests will be allowed")
	authDomain             = flag.String("auth-domain", "", "The domain used for validating jwt tokens")
	authAudience           = flag.String("auth-audience", "", "The audience used for validating jwt tokens")
)

func ValidationDisabled() bool {
	return *disableTokenValidation || (os.Getenv("DISABLE_VALIDATION") == "true")
}

func unauthorized(w http.ResponseWriter, r *http.Request, err error) {
	logger.Warningf("Encountered error while validating JWT: %v", err)

	pkgnet.Respond(w, http.StatusUnauthorized, map[string]string{
		"message": "Failed to validate JWT.",
	})
}

// EnsureValidToken is a middleware that will check the validity of our JWT.
func EnsureValidToken() (Middleware, error) {
	if ValidationDisabled() {
		return func(next http.Handler) http.Handler {
			return next
		}, nil
	}

	domain := *authDomain
	if domain == "" {
		domain = os.Getenv("AUTH0_DOMAIN")
	}
	issuerURL, err := url.Parse("https://" + domain + "/")
	if err != nil {
		return nil, ErrValidator.Wrap(err)
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	audience := *authAudience
	if audience == "" {
		audience = os.Getenv("AUTH0_AUDIENCE")
	}
	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{audience},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &CustomClaims{}
			},
		),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, ErrValidator.Wrap(err)
	}

	middleware := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(unauthorized),
	)

	return func(next http.Handler) http.Handler {
		return middleware.CheckJWT(next)
	}, nil
}

// RequireScope rejects requests whose validated token lacks scope. It must run
// after EnsureValidToken and lets everything through when validation is
// disabled.
func RequireScope(scope string) Middleware {
	return func(next http.Handler) http.Handler {
		if ValidationDisabled() {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)
			if ok {
				if custom, ok := claims.CustomClaims.(*CustomClaims); ok && custom.HasScope(scope) {
					next.ServeHTTP(w, r)
					return
				}
			}

			pkgnet.Respond(w, http.StatusForbidden, map[string]string{
				"message": "Insufficient scope.",
			})
		})
	}
}
