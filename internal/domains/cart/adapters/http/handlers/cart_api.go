package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/llmndev/perfume-storefront/internal/clients/http/storeapi"
	"github.com/llmndev/perfume-storefront/internal/domains/cart/adapters/http/mapper"
	cartapp "github.com/llmndev/perfume-storefront/internal/domains/cart/application"
	"github.com/llmndev/perfume-storefront/internal/domains/cart/ports"
	"github.com/llmndev/perfume-storefront/internal/platform/auth"
	problems "github.com/llmndev/perfume-storefront/internal/shared/errors"
)

// CartAPI exposes the shopper's synchronized cart over HTTP. Routes must be mounted
// behind auth.Middleware.
type CartAPI struct {
	sessions  ports.Sessions
	responder *problems.Responder
}

// NewCartAPI creates a CartAPI backed by the session registry.
func NewCartAPI(sessions ports.Sessions) *CartAPI {
	return &CartAPI{sessions: sessions, responder: problems.NewResponder(MapCartError)}
}

// Register mounts the cart routes on r.
func (api *CartAPI) Register(r gin.IRoutes) {
	r.GET("/cart", api.GetCart)
	r.POST("/cart/refresh", api.RefreshCart)
	r.POST("/cart/items", api.AddItem)
	r.PUT("/cart/items/:itemId", api.UpdateItem)
	r.DELETE("/cart/items/:itemId", api.RemoveItem)
	r.DELETE("/cart", api.ClearCart)
	r.DELETE("/cart/session", api.ReleaseSession)
}

// Get /api/cart
// Returns the held cart, mounting the session on first use
func (api *CartAPI) GetCart(c *gin.Context) {
	sess, ok := api.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, mapper.FromSynchronizer(sess))
}

// Post /api/cart/refresh
// Reloads the cart from the store API
func (api *CartAPI) RefreshCart(c *gin.Context) {
	sess, ok := api.session(c)
	if !ok {
		return
	}
	if err := sess.Refresh(c.Request.Context()); err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromSynchronizer(sess))
}

// Post /api/cart/items
// Adds a product, merging into the existing line when present
func (api *CartAPI) AddItem(c *gin.Context) {
	var payload mapper.AddItemRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	sess, ok := api.session(c)
	if !ok {
		return
	}
	err := sess.AddItem(c.Request.Context(), payload.ProductID, payload.EffectiveQuantity())
	if errors.Is(err, cartapp.ErrCartNotLoaded) {
		// the cart was reloaded by the failed call; one retry is enough
		err = sess.AddItem(c.Request.Context(), payload.ProductID, payload.EffectiveQuantity())
	}
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromSynchronizer(sess))
}

// Put /api/cart/items/:itemId
// Sets a line item quantity; zero or less removes the line
func (api *CartAPI) UpdateItem(c *gin.Context) {
	itemID, ok := api.parseItemID(c)
	if !ok {
		return
	}
	var payload mapper.UpdateItemRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	sess, ok := api.ownedItem(c, itemID)
	if !ok {
		return
	}
	if err := sess.UpdateQuantity(c.Request.Context(), itemID, *payload.Quantity); err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromSynchronizer(sess))
}

// Delete /api/cart/items/:itemId
// Removes a line item
func (api *CartAPI) RemoveItem(c *gin.Context) {
	itemID, ok := api.parseItemID(c)
	if !ok {
		return
	}
	sess, ok := api.ownedItem(c, itemID)
	if !ok {
		return
	}
	if err := sess.RemoveItem(c.Request.Context(), itemID); err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromSynchronizer(sess))
}

// Delete /api/cart
// Removes every line item
func (api *CartAPI) ClearCart(c *gin.Context) {
	sess, ok := api.session(c)
	if !ok {
		return
	}
	if err := sess.Clear(c.Request.Context()); err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromSynchronizer(sess))
}

// Delete /api/cart/session
// Discards the shopper's synchronizer; the remote cart is untouched
func (api *CartAPI) ReleaseSession(c *gin.Context) {
	id, ok := auth.IdentityOf(c)
	if !ok {
		api.responder.Unauthorized(c, "no shopper identity")
		return
	}
	api.sessions.Release(id.UserID)
	c.Status(http.StatusNoContent)
}

func (api *CartAPI) session(c *gin.Context) (ports.Synchronizer, bool) {
	id, ok := auth.IdentityOf(c)
	if !ok {
		api.responder.Unauthorized(c, "no shopper identity")
		return nil, false
	}
	sess, err := api.sessions.For(c.Request.Context(), id.UserID)
	if err != nil {
		api.responder.RespondError(c, err)
		return nil, false
	}
	return sess, true
}

// ownedItem resolves the session and checks the line item belongs to the held cart,
// so shoppers cannot touch line items of other carts.
func (api *CartAPI) ownedItem(c *gin.Context, itemID int64) (ports.Synchronizer, bool) {
	sess, ok := api.session(c)
	if !ok {
		return nil, false
	}
	if _, found := sess.Cart().FindItem(itemID); !found {
		api.responder.Respond(c, problems.NewNotFoundProblem("cart item", itemID))
		return nil, false
	}
	return sess, true
}

func (api *CartAPI) parseItemID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("itemId"), 10, 64)
	if err != nil || id <= 0 {
		api.responder.Respond(c, problems.NewValidationProblem(map[string]string{
			"itemId": "must be a positive integer",
		}))
		return 0, false
	}
	return id, true
}

// MapCartError converts cart application errors into problem details.
func MapCartError(err error) (problems.ProblemDetail, bool) {
	switch {
	case errors.Is(err, cartapp.ErrInvalidInput):
		return problems.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, cartapp.ErrCartNotLoaded):
		return problems.ErrUnavailable.WithDetail("cart is loading, retry the request"), true
	case errors.Is(err, context.DeadlineExceeded):
		return problems.NewBadGatewayProblem("store API did not answer in time", 0), true
	case errors.Is(err, cartapp.ErrRemote):
		var apiErr *storeapi.APIError
		if errors.As(err, &apiErr) {
			return problems.NewBadGatewayProblem(fmt.Sprintf("store API answered %d", apiErr.StatusCode), apiErr.StatusCode), true
		}
		return problems.NewBadGatewayProblem(err.Error(), 0), true
	}
	return problems.ProblemDetail{}, false
}
