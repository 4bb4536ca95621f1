package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/llmndev/perfume-storefront/internal/domains/wishlist/adapters/http/mapper"
	wishlistapp "github.com/llmndev/perfume-storefront/internal/domains/wishlist/application"
	"github.com/llmndev/perfume-storefront/internal/domains/wishlist/ports"
	"github.com/llmndev/perfume-storefront/internal/platform/auth"
	problems "github.com/llmndev/perfume-storefront/internal/shared/errors"
)

// WishlistAPI serves the shopper's wishlist. Routes must be mounted behind auth.Middleware.
type WishlistAPI struct {
	svc       ports.Service
	responder *problems.Responder
}

func NewWishlistAPI(svc ports.Service) *WishlistAPI {
	return &WishlistAPI{svc: svc, responder: problems.NewResponder(MapWishlistError)}
}

func (api *WishlistAPI) Register(r gin.IRoutes) {
	r.GET("/wishlist", api.List)
	r.GET("/wishlist/contains", api.Contains)
	r.POST("/wishlist/items", api.Add)
	r.POST("/wishlist/items/toggle", api.Toggle)
	r.DELETE("/wishlist/items/:productId", api.Remove)
	r.DELETE("/wishlist", api.Clear)
}

// Get /api/wishlist
func (api *WishlistAPI) List(c *gin.Context) {
	userID, ok := api.userID(c)
	if !ok {
		return
	}
	list, err := api.svc.List(c.Request.Context(), userID)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromWishlist(list))
}

// Get /api/wishlist/contains?productId=1&productId=2
// Ids may also be comma separated
func (api *WishlistAPI) Contains(c *gin.Context) {
	userID, ok := api.userID(c)
	if !ok {
		return
	}
	var ids []int64
	for _, raw := range c.QueryArray("productId") {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				api.responder.Respond(c, problems.NewValidationProblem(map[string]string{
					"productId": "must be a list of positive integers",
				}))
				return
			}
			ids = append(ids, id)
		}
	}
	present, err := api.svc.Contains(c.Request.Context(), userID, ids)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.ContainsResponse{Products: present})
}

// Post /api/wishlist/items
func (api *WishlistAPI) Add(c *gin.Context) {
	var payload mapper.ItemRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	userID, ok := api.userID(c)
	if !ok {
		return
	}
	list, err := api.svc.Add(c.Request.Context(), userID, payload.ToDomain())
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromWishlist(list))
}

// Post /api/wishlist/items/toggle
func (api *WishlistAPI) Toggle(c *gin.Context) {
	var payload mapper.ItemRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	userID, ok := api.userID(c)
	if !ok {
		return
	}
	on, err := api.svc.Toggle(c.Request.Context(), userID, payload.ToDomain())
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.ToggleResponse{ProductID: payload.ProductID, InWishlist: on})
}

// Delete /api/wishlist/items/:productId
func (api *WishlistAPI) Remove(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil || productID <= 0 {
		api.responder.Respond(c, problems.NewValidationProblem(map[string]string{
			"productId": "must be a positive integer",
		}))
		return
	}
	userID, ok := api.userID(c)
	if !ok {
		return
	}
	list, err := api.svc.Remove(c.Request.Context(), userID, productID)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromWishlist(list))
}

// Delete /api/wishlist
func (api *WishlistAPI) Clear(c *gin.Context) {
	userID, ok := api.userID(c)
	if !ok {
		return
	}
	if err := api.svc.Clear(c.Request.Context(), userID); err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (api *WishlistAPI) userID(c *gin.Context) (int64, bool) {
	id, ok := auth.IdentityOf(c)
	if !ok {
		api.responder.Unauthorized(c, "no shopper identity")
		return 0, false
	}
	return id.UserID, true
}

// MapWishlistError converts wishlist application errors into problem details.
func MapWishlistError(err error) (problems.ProblemDetail, bool) {
	if errors.Is(err, wishlistapp.ErrInvalidInput) {
		return problems.ErrValidation.WithDetail(err.Error()), true
	}
	return problems.ProblemDetail{}, false
}
