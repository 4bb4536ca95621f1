package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	problems "github.com/llmndev/perfume-storefront/internal/shared/errors"
)

// Middleware rejects requests without a valid bearer token and binds the
// resolved identity to the request context. A nil validator rejects everything.
func Middleware(validator *Validator, responder *problems.Responder) gin.HandlerFunc {
	if responder == nil {
		responder = problems.NewResponder()
	}
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			responder.Unauthorized(c, "missing Authorization header")
			return
		}
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			responder.Unauthorized(c, "expected 'Bearer <token>' Authorization header")
			return
		}
		if validator == nil {
			responder.Unauthorized(c, "authentication not configured")
			return
		}
		id, err := validator.Validate(strings.TrimSpace(token))
		if err != nil {
			responder.Unauthorized(c, ErrInvalidToken.Error())
			return
		}
		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

// IdentityOf returns the identity bound by Middleware.
func IdentityOf(c *gin.Context) (Identity, bool) {
	return FromContext(c.Request.Context())
}
