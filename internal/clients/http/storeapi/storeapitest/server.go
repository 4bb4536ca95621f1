// Package storeapitest runs an in-process fake of the store API cart endpoints.
package storeapitest

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/llmndev/perfume-storefront/internal/clients/http/storeapi"
)

// BasePath is the prefix the fake mounts the API under.
const BasePath = "/api/v1"

// RecordedRequest captures what the fake saw for one call.
type RecordedRequest struct {
	Method        string
	Route         string
	Path          string
	Authorization string
	RequestID     string
}

// Server is a thread-safe fake of the cart endpoints.
type Server struct {
	httpServer *httptest.Server

	mu         sync.Mutex
	products   map[int64]storeapi.Product
	carts      map[int64]storeapi.Cart
	cartByUser map[int64]int64
	items      map[int64]storeapi.CartItem
	nextCart   int64
	nextItem   int64
	failures   map[string]int
	requests   []RecordedRequest
}

// NewServer starts the fake. Callers must Close it.
func NewServer() *Server {
	s := &Server{
		products:   map[int64]storeapi.Product{},
		carts:      map[int64]storeapi.Cart{},
		cartByUser: map[int64]int64{},
		items:      map[int64]storeapi.CartItem{},
		failures:   map[string]int{},
	}
	s.httpServer = httptest.NewServer(s.Handler())
	return s
}

// Handler returns the gin engine serving the fake routes.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group(BasePath)
	api.Use(s.record)
	api.GET("/cart/by-user/:userId", s.getCartByUser)
	api.POST("/cart", s.createCart)
	api.GET("/cart-items/by-cart/:cartId", s.listCartItems)
	api.POST("/cart-items", s.createCartItem)
	api.PUT("/cart-items/:id", s.updateCartItem)
	api.DELETE("/cart-items/:id", s.deleteCartItem)
	return router
}

// URL returns the base URL clients should be configured with.
func (s *Server) URL() string {
	return s.httpServer.URL + BasePath
}

// Close shuts the fake down.
func (s *Server) Close() {
	s.httpServer.Close()
}

// AddProduct seeds the catalog.
func (s *Server) AddProduct(p storeapi.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// SeedCart creates a cart for userID and returns its id.
func (s *Server) SeedCart(userID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureCart(userID).ID
}

// SeedItem stores a line item in an existing cart and returns its id.
func (s *Server) SeedItem(cartID, productID int64, quantity int) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextItem++
	s.items[s.nextItem] = storeapi.CartItem{
		ID:       s.nextItem,
		Quantity: quantity,
		Product:  s.products[productID],
		Cart:     &storeapi.CartRef{ID: cartID},
	}
	return s.nextItem
}

// Reset drops carts, items, failures and recorded requests and restarts id
// sequences at 1. The catalog is kept.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts = map[int64]storeapi.Cart{}
	s.cartByUser = map[int64]int64{}
	s.items = map[int64]storeapi.CartItem{}
	s.failures = map[string]int{}
	s.requests = nil
	s.nextCart = 0
	s.nextItem = 0
}

// Fail makes every call matching "METHOD route" answer with status until
// cleared with status 0. Routes use gin syntax relative to BasePath,
// e.g. "GET /cart/by-user/:userId".
func (s *Server) Fail(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, route)
		return
	}
	s.failures[route] = status
}

// Requests returns a copy of the recorded calls in arrival order.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// Count returns how many calls matched "METHOD route".
func (s *Server) Count(route string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method+" "+r.Route == route {
			n++
		}
	}
	return n
}

// Items returns the stored line items of a cart, ordered by id.
func (s *Server) Items(cartID int64) []storeapi.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.itemsOf(cartID)
}

func (s *Server) record(c *gin.Context) {
	route := c.FullPath()
	if len(route) >= len(BasePath) {
		route = route[len(BasePath):]
	}
	s.mu.Lock()
	s.requests = append(s.requests, RecordedRequest{
		Method:        c.Request.Method,
		Route:         route,
		Path:          c.Request.URL.Path,
		Authorization: c.GetHeader("Authorization"),
		RequestID:     c.GetHeader(storeapi.RequestIDHeader),
	})
	status, failing := s.failures[c.Request.Method+" "+route]
	s.mu.Unlock()
	if failing {
		c.AbortWithStatusJSON(status, gin.H{"error": http.StatusText(status)})
		return
	}
	c.Next()
}

func (s *Server) getCartByUser(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cartID, found := s.cartByUser[userID]
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "cart not found"})
		return
	}
	c.JSON(http.StatusOK, s.carts[cartID])
}

func (s *Server) createCart(c *gin.Context) {
	var body storeapi.CreateCartRequest
	if err := c.ShouldBindJSON(&body); err != nil || body.User.ID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id is required"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.ensureCart(body.User.ID))
}

func (s *Server) listCartItems(c *gin.Context) {
	cartID, ok := pathID(c, "cartId")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.carts[cartID]; !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "cart not found"})
		return
	}
	c.JSON(http.StatusOK, s.itemsOf(cartID))
}

func (s *Server) createCartItem(c *gin.Context) {
	var body storeapi.CreateCartItemRequest
	if err := c.ShouldBindJSON(&body); err != nil || body.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cart item"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.carts[body.Cart.ID]; !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "cart not found"})
		return
	}
	product, found := s.products[body.Product.ID]
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	s.nextItem++
	item := storeapi.CartItem{
		ID:       s.nextItem,
		Quantity: body.Quantity,
		Product:  product,
		Cart:     &storeapi.CartRef{ID: body.Cart.ID},
	}
	s.items[item.ID] = item
	c.JSON(http.StatusCreated, item)
}

func (s *Server) updateCartItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body storeapi.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&body); err != nil || body.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quantity"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	item, found := s.items[id]
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "cart item not found"})
		return
	}
	item.Quantity = body.Quantity
	s.items[id] = item
	c.JSON(http.StatusOK, item)
}

func (s *Server) deleteCartItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.items[id]; !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "cart item not found"})
		return
	}
	delete(s.items, id)
	c.Status(http.StatusNoContent)
}

func (s *Server) ensureCart(userID int64) storeapi.Cart {
	if cartID, found := s.cartByUser[userID]; found {
		return s.carts[cartID]
	}
	s.nextCart++
	cart := storeapi.Cart{ID: s.nextCart, User: &storeapi.UserRef{ID: userID}}
	s.carts[cart.ID] = cart
	s.cartByUser[userID] = cart.ID
	return cart
}

func (s *Server) itemsOf(cartID int64) []storeapi.CartItem {
	list := make([]storeapi.CartItem, 0)
	for _, item := range s.items {
		if item.Cart != nil && item.Cart.ID == cartID {
			list = append(list, item)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a positive integer"})
		return 0, false
	}
	return id, true
}
