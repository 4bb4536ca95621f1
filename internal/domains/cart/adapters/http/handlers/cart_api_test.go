package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/llmndev/perfume-storefront/internal/clients/http/storeapi"
	cartmemory "github.com/llmndev/perfume-storefront/internal/domains/cart/adapters/memory"
	"github.com/llmndev/perfume-storefront/internal/domains/cart/adapters/http/mapper"
	cartapp "github.com/llmndev/perfume-storefront/internal/domains/cart/application"
	"github.com/llmndev/perfume-storefront/internal/domains/cart/domain"
	"github.com/llmndev/perfume-storefront/internal/domains/cart/ports"
	"github.com/llmndev/perfume-storefront/internal/platform/auth"
	problems "github.com/llmndev/perfume-storefront/internal/shared/errors"
)

type cartServer struct {
	router    *gin.Engine
	remote    *cartmemory.Remote
	registry  *cartapp.Registry
	validator *auth.Validator
}

func newCartServer(t *testing.T) *cartServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	remote := cartmemory.NewRemote().WithProducts(
		domain.ProductSnapshot{ID: 1, Name: "Oud Noir", UnitPrice: 100},
		domain.ProductSnapshot{ID: 2, Name: "Rose Absolue", UnitPrice: 45.5, ImageURL: "/img/rose.png"},
	)
	registry, err := cartapp.NewRegistry(8, func(userID int64) (ports.Synchronizer, error) {
		return cartapp.NewSynchronizer(remote, userID)
	})
	require.NoError(t, err)
	validator, err := auth.NewValidator("test-secret", "")
	require.NoError(t, err)

	router := gin.New()
	group := router.Group("/api", auth.Middleware(validator, nil))
	NewCartAPI(registry).Register(group)
	return &cartServer{router: router, remote: remote, registry: registry, validator: validator}
}

func (s *cartServer) do(t *testing.T, userID int64, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID > 0 {
		token, err := s.validator.Issue(userID, time.Minute)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) mapper.CartState {
	t.Helper()
	var state mapper.CartState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	return state
}

func TestCartAPI_ExampleFlow(t *testing.T) {
	s := newCartServer(t)

	rec := s.do(t, 1, http.MethodGet, "/api/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	state := decodeState(t, rec)
	require.NotNil(t, state.Cart)
	require.Empty(t, state.Cart.Items)
	require.Equal(t, "0.00", state.Subtotal)
	require.Equal(t, "idle", state.Phase)

	rec = s.do(t, 1, http.MethodPost, "/api/cart/items", map[string]any{"productId": 1})
	require.Equal(t, http.StatusOK, rec.Code)
	state = decodeState(t, rec)
	require.Equal(t, 1, state.ItemCount)
	require.Equal(t, "100.00", state.Subtotal)

	rec = s.do(t, 1, http.MethodPost, "/api/cart/items", map[string]any{"productId": 1, "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code)
	state = decodeState(t, rec)
	require.Len(t, state.Cart.Items, 1)
	require.Equal(t, 3, state.Cart.Items[0].Quantity)
	require.Equal(t, "300.00", state.Cart.Items[0].LineTotal)
	require.Equal(t, "300.00", state.Subtotal)

	itemPath := fmt.Sprintf("/api/cart/items/%d", state.Cart.Items[0].ID)
	rec = s.do(t, 1, http.MethodPut, itemPath, map[string]any{"quantity": 0})
	require.Equal(t, http.StatusOK, rec.Code)
	state = decodeState(t, rec)
	require.Empty(t, state.Cart.Items)
	require.Equal(t, "0.00", state.Subtotal)
	require.Zero(t, state.ItemCount)
}

func TestCartAPI_RemoveAndClear(t *testing.T) {
	s := newCartServer(t)

	s.do(t, 2, http.MethodPost, "/api/cart/items", map[string]any{"productId": 1})
	rec := s.do(t, 2, http.MethodPost, "/api/cart/items", map[string]any{"productId": 2, "quantity": 2})
	state := decodeState(t, rec)
	require.Len(t, state.Cart.Items, 2)
	require.Equal(t, "191.00", state.Subtotal)

	rec = s.do(t, 2, http.MethodDelete, fmt.Sprintf("/api/cart/items/%d", state.Cart.Items[0].ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decodeState(t, rec).Cart.Items, 1)

	rec = s.do(t, 2, http.MethodDelete, "/api/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	state = decodeState(t, rec)
	require.Empty(t, state.Cart.Items)
	require.Zero(t, state.ItemCount)
}

func TestCartAPI_ItemsOfOtherCartsAreNotFound(t *testing.T) {
	s := newCartServer(t)

	rec := s.do(t, 3, http.MethodPost, "/api/cart/items", map[string]any{"productId": 1})
	foreignItem := decodeState(t, rec).Cart.Items[0].ID

	rec = s.do(t, 4, http.MethodDelete, fmt.Sprintf("/api/cart/items/%d", foreignItem), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, problems.ContentTypeProblemJSON, rec.Header().Get("Content-Type"))

	rec = s.do(t, 3, http.MethodGet, "/api/cart", nil)
	require.Equal(t, 1, decodeState(t, rec).ItemCount)
}

func TestCartAPI_ValidatesInput(t *testing.T) {
	s := newCartServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{name: "missing product", method: http.MethodPost, path: "/api/cart/items", body: map[string]any{"quantity": 1}, status: http.StatusBadRequest},
		{name: "zero quantity add", method: http.MethodPost, path: "/api/cart/items", body: map[string]any{"productId": 1, "quantity": 0}, status: http.StatusBadRequest},
		{name: "bad item id", method: http.MethodPut, path: "/api/cart/items/abc", body: map[string]any{"quantity": 1}, status: http.StatusBadRequest},
		{name: "missing quantity", method: http.MethodPut, path: "/api/cart/items/1", body: map[string]any{}, status: http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(t, 5, tc.method, tc.path, tc.body)
			require.Equal(t, tc.status, rec.Code)
			require.Equal(t, problems.ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
		})
	}
}

func TestCartAPI_RequiresIdentity(t *testing.T) {
	s := newCartServer(t)

	rec := s.do(t, 0, http.MethodGet, "/api/cart", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Zero(t, s.registry.Len())
}

func TestCartAPI_ReleaseSession(t *testing.T) {
	s := newCartServer(t)

	s.do(t, 6, http.MethodGet, "/api/cart", nil)
	require.Equal(t, 1, s.registry.Len())

	rec := s.do(t, 6, http.MethodDelete, "/api/cart/session", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Zero(t, s.registry.Len())

	cart, err := s.remote.GetCartByUser(context.Background(), 6)
	require.NoError(t, err)
	require.NotZero(t, cart.ID)
}

func TestMapCartError(t *testing.T) {
	upstream := &storeapi.APIError{StatusCode: http.StatusServiceUnavailable, Method: http.MethodGet, Path: "/cart/by-user/1"}

	tests := []struct {
		name   string
		err    error
		status int
		mapped bool
	}{
		{name: "invalid input", err: fmt.Errorf("%w: %w", cartapp.ErrInvalidInput, domain.ErrInvalidQuantity), status: http.StatusBadRequest, mapped: true},
		{name: "not loaded", err: cartapp.ErrCartNotLoaded, status: http.StatusServiceUnavailable, mapped: true},
		{name: "remote api error", err: fmt.Errorf("%w: load cart: %w", cartapp.ErrRemote, upstream), status: http.StatusBadGateway, mapped: true},
		{name: "remote timeout", err: fmt.Errorf("%w: load cart: %w", cartapp.ErrRemote, context.DeadlineExceeded), status: http.StatusBadGateway, mapped: true},
		{name: "unknown", err: errors.New("boom"), mapped: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			problem, ok := MapCartError(tc.err)
			require.Equal(t, tc.mapped, ok)
			if tc.mapped {
				require.Equal(t, tc.status, problem.Status)
			}
		})
	}

	problem, _ := MapCartError(fmt.Errorf("%w: x: %w", cartapp.ErrRemote, upstream))
	require.Equal(t, http.StatusServiceUnavailable, problem.Extensions["upstreamStatus"])
}
