package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestWithExtension_DoesNotMutateTemplate(t *testing.T) {
	problem := NewBadGatewayProblem("store API answered 503", http.StatusServiceUnavailable)

	require.Equal(t, http.StatusServiceUnavailable, problem.Extensions["upstreamStatus"])
	require.Nil(t, ErrBadGateway.Extensions)
	require.Equal(t, "Store API Error: store API answered 503", problem.Error())

	require.NotContains(t, NewBadGatewayProblem("timeout", 0).Extensions, "upstreamStatus")
}

func TestNewNotFoundProblem(t *testing.T) {
	problem := NewNotFoundProblem("cart item", int64(9))

	require.Equal(t, http.StatusNotFound, problem.Status)
	require.Equal(t, "cart item with identifier '9' not found", problem.Detail)
	require.Equal(t, "cart item", problem.Extensions["resourceType"])
}

func TestHTTPStatusFromError(t *testing.T) {
	require.Equal(t, http.StatusBadGateway, HTTPStatusFromError(fmt.Errorf("wrapped: %w", ErrBadGateway)))
	require.Equal(t, http.StatusInternalServerError, HTTPStatusFromError(errors.New("boom")))
}

func TestResponder_RespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	errTeapot := errors.New("teapot")
	responder := NewResponder(func(err error) (ProblemDetail, bool) {
		if errors.Is(err, errTeapot) {
			return ErrValidation.WithDetail("short and stout"), true
		}
		return ProblemDetail{}, false
	})

	tests := []struct {
		name   string
		err    error
		status int
		title  string
	}{
		{name: "problem passes through", err: ErrUnavailable, status: http.StatusServiceUnavailable, title: "Service Unavailable"},
		{name: "mapped", err: fmt.Errorf("x: %w", errTeapot), status: http.StatusBadRequest, title: "Validation Error"},
		{name: "fallback", err: errors.New("boom"), status: http.StatusInternalServerError, title: "Internal Server Error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/api/cart", nil)

			responder.RespondError(c, tc.err)

			require.Equal(t, tc.status, rec.Code)
			require.Equal(t, ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
			var body ProblemDetail
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, tc.title, body.Title)
			require.Equal(t, "/api/cart", body.Instance)
			require.True(t, c.IsAborted())
		})
	}
}

func TestResponder_UnauthorizedSetsChallenge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/wishlist", nil)

	NewResponder().Unauthorized(c, "no token")

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
}
