package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestValidator_RoundTrip(t *testing.T) {
	v, err := NewValidator("s3cret", "storefront")
	require.NoError(t, err)

	token, err := v.Issue(42, time.Minute)
	require.NoError(t, err)

	id, err := v.Validate(token)
	require.NoError(t, err)
	require.Equal(t, int64(42), id.UserID)
	require.Equal(t, token, id.Token)
}

func TestValidator_Rejects(t *testing.T) {
	v, err := NewValidator("s3cret", "storefront")
	require.NoError(t, err)
	other, err := NewValidator("other", "storefront")
	require.NoError(t, err)
	foreignIssuer, err := NewValidator("s3cret", "elsewhere")
	require.NoError(t, err)

	expired, err := v.Issue(1, -time.Minute)
	require.NoError(t, err)
	forged, err := other.Issue(1, time.Minute)
	require.NoError(t, err)
	wrongIssuer, err := foreignIssuer.Issue(1, time.Minute)
	require.NoError(t, err)
	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "alice"}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":      expired,
		"forged":       forged,
		"wrong issuer": wrongIssuer,
		"bad subject":  badSubject,
		"garbage":      "not-a-jwt",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := v.Validate(token)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestNewValidator_RequiresSecret(t *testing.T) {
	_, err := NewValidator("  ", "")
	require.ErrorIs(t, err, ErrMissingSecret)
}

func TestFromContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	require.False(t, ok)

	ctx := WithIdentity(context.Background(), Identity{UserID: 3, Token: "t"})
	id, ok := FromContext(ctx)
	require.True(t, ok)
	require.Equal(t, int64(3), id.UserID)

	token, ok := TokenFromContext(ctx)
	require.True(t, ok)
	require.Equal(t, "t", token)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	v, err := NewValidator("s3cret", "")
	require.NoError(t, err)
	token, err := v.Issue(9, time.Minute)
	require.NoError(t, err)

	router := gin.New()
	router.GET("/me", Middleware(v, nil), func(c *gin.Context) {
		id, ok := IdentityOf(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"userId": id.UserID})
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "valid", header: "Bearer " + token, status: http.StatusOK},
		{name: "lowercase scheme", header: "bearer " + token, status: http.StatusOK},
		{name: "missing", header: "", status: http.StatusUnauthorized},
		{name: "basic", header: "Basic Zm9vOmJhcg==", status: http.StatusUnauthorized},
		{name: "invalid", header: "Bearer nope", status: http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				var body map[string]int64
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				require.Equal(t, int64(9), body["userId"])
				return
			}
			require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestMiddleware_NilValidatorFailsClosed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/me", Middleware(nil, nil), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
