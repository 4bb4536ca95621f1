package storeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/oapi-codegen/runtime"
)

// DefaultBaseURL is the store API root used when none is configured.
const DefaultBaseURL = "http://localhost:8080/api/v1"

// maxErrorBody bounds how much of an error response is kept in APIError.Message.
const maxErrorBody = 4 << 10

// HttpRequestDoer performs HTTP requests.
type HttpRequestDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RequestEditorFn is the function signature for the RequestEditor callback function.
type RequestEditorFn func(ctx context.Context, req *http.Request) error

// Client calls the cart endpoints of the store REST API.
type Client struct {
	// Server is the base URL every operation path is resolved against.
	Server string

	// Client performs the requests. Defaults to NewHTTPClient(DefaultTimeout).
	Client HttpRequestDoer

	// RequestEditors run on every request, in order, before it is sent.
	RequestEditors []RequestEditorFn
}

// ClientOption allows setting custom parameters during construction.
type ClientOption func(*Client) error

// NewClient creates a client for the given base URL with reasonable defaults.
func NewClient(server string, opts ...ClientOption) (*Client, error) {
	server = strings.TrimSpace(server)
	if server == "" {
		server = DefaultBaseURL
	}
	if _, err := url.Parse(server); err != nil {
		return nil, fmt.Errorf("parse store API base URL: %w", err)
	}
	client := Client{Server: server}
	for _, o := range opts {
		if err := o(&client); err != nil {
			return nil, err
		}
	}
	if !strings.HasSuffix(client.Server, "/") {
		client.Server += "/"
	}
	if client.Client == nil {
		client.Client = NewHTTPClient(DefaultTimeout)
	}
	return &client, nil
}

// WithHTTPClient allows overriding the default Doer.
func WithHTTPClient(doer HttpRequestDoer) ClientOption {
	return func(c *Client) error {
		if doer == nil {
			return errors.New("store API http client is nil")
		}
		c.Client = doer
		return nil
	}
}

// WithRequestEditorFn allows setting up a callback function, which will be
// called right before sending the request.
func WithRequestEditorFn(fn RequestEditorFn) ClientOption {
	return func(c *Client) error {
		if fn != nil {
			c.RequestEditors = append(c.RequestEditors, fn)
		}
		return nil
	}
}

// GetCartByUser fetches the cart owned by a user. A user without a cart yields an
// APIError with status 404.
func (c *Client) GetCartByUser(ctx context.Context, userID int64) (*Cart, error) {
	req, err := NewGetCartByUserRequest(c.Server, userID)
	if err != nil {
		return nil, err
	}
	var cart Cart
	if err := c.do(ctx, req, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// CreateCart creates a cart for the referenced user.
func (c *Client) CreateCart(ctx context.Context, body CreateCartRequest) (*Cart, error) {
	req, err := NewCreateCartRequest(c.Server, body)
	if err != nil {
		return nil, err
	}
	var cart Cart
	if err := c.do(ctx, req, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// ListCartItems returns every line item of a cart with product details.
func (c *Client) ListCartItems(ctx context.Context, cartID int64) ([]CartItem, error) {
	req, err := NewListCartItemsRequest(c.Server, cartID)
	if err != nil {
		return nil, err
	}
	var items []CartItem
	if err := c.do(ctx, req, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CreateCartItem adds a line item to a cart.
func (c *Client) CreateCartItem(ctx context.Context, body CreateCartItemRequest) (*CartItem, error) {
	req, err := NewCreateCartItemRequest(c.Server, body)
	if err != nil {
		return nil, err
	}
	var item CartItem
	if err := c.do(ctx, req, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateCartItem replaces the quantity of a line item.
func (c *Client) UpdateCartItem(ctx context.Context, id int64, body UpdateCartItemRequest) (*CartItem, error) {
	req, err := NewUpdateCartItemRequest(c.Server, id, body)
	if err != nil {
		return nil, err
	}
	var item CartItem
	if err := c.do(ctx, req, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteCartItem removes a line item. Any response body is discarded.
func (c *Client) DeleteCartItem(ctx context.Context, id int64) error {
	req, err := NewDeleteCartItemRequest(c.Server, id)
	if err != nil {
		return err
	}
	return c.do(ctx, req, nil)
}

// NewGetCartByUserRequest generates requests for GetCartByUser.
func NewGetCartByUserRequest(server string, userID int64) (*http.Request, error) {
	pathParam0, err := runtime.StyleParamWithLocation("simple", false, "userId", runtime.ParamLocationPath, userID)
	if err != nil {
		return nil, err
	}
	return newRequest(http.MethodGet, server, fmt.Sprintf("/cart/by-user/%s", pathParam0), nil)
}

// NewCreateCartRequest generates requests for CreateCart.
func NewCreateCartRequest(server string, body CreateCartRequest) (*http.Request, error) {
	return newJSONRequest(http.MethodPost, server, "/cart", body)
}

// NewListCartItemsRequest generates requests for ListCartItems.
func NewListCartItemsRequest(server string, cartID int64) (*http.Request, error) {
	pathParam0, err := runtime.StyleParamWithLocation("simple", false, "cartId", runtime.ParamLocationPath, cartID)
	if err != nil {
		return nil, err
	}
	return newRequest(http.MethodGet, server, fmt.Sprintf("/cart-items/by-cart/%s", pathParam0), nil)
}

// NewCreateCartItemRequest generates requests for CreateCartItem.
func NewCreateCartItemRequest(server string, body CreateCartItemRequest) (*http.Request, error) {
	return newJSONRequest(http.MethodPost, server, "/cart-items", body)
}

// NewUpdateCartItemRequest generates requests for UpdateCartItem.
func NewUpdateCartItemRequest(server string, id int64, body UpdateCartItemRequest) (*http.Request, error) {
	pathParam0, err := runtime.StyleParamWithLocation("simple", false, "id", runtime.ParamLocationPath, id)
	if err != nil {
		return nil, err
	}
	return newJSONRequest(http.MethodPut, server, fmt.Sprintf("/cart-items/%s", pathParam0), body)
}

// NewDeleteCartItemRequest generates requests for DeleteCartItem.
func NewDeleteCartItemRequest(server string, id int64) (*http.Request, error) {
	pathParam0, err := runtime.StyleParamWithLocation("simple", false, "id", runtime.ParamLocationPath, id)
	if err != nil {
		return nil, err
	}
	return newRequest(http.MethodDelete, server, fmt.Sprintf("/cart-items/%s", pathParam0), nil)
}

func newJSONRequest(method, server, operationPath string, body any) (*http.Request, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := newRequest(method, server, operationPath, bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Add("Content-Type", "application/json")
	return req, nil
}

func newRequest(method, server, operationPath string, body io.Reader) (*http.Request, error) {
	serverURL, err := url.Parse(server)
	if err != nil {
		return nil, err
	}
	if operationPath[0] == '/' {
		operationPath = "." + operationPath
	}
	queryURL, err := serverURL.Parse(operationPath)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(method, queryURL.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) applyEditors(ctx context.Context, req *http.Request) error {
	for _, r := range c.RequestEditors {
		if err := r(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) do(ctx context.Context, req *http.Request, out any) error {
	req = req.WithContext(ctx)
	if err := c.applyEditors(ctx, req); err != nil {
		return fmt.Errorf("prepare store API request: %w", err)
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("call store API %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Method:     req.Method,
			Path:       req.URL.Path,
			Message:    strings.TrimSpace(string(raw)),
		}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("store API %s %s: empty response body", req.Method, req.URL.Path)
		}
		return fmt.Errorf("decode store API %s %s response: %w", req.Method, req.URL.Path, err)
	}
	return nil
}
