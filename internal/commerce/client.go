package commerce

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
	"time"

	"github.com/angelmondragon/havenwood-client/pkg/config"
	pkgerrors "github.com/angelmondragon/havenwood-client/pkg/errors"
	"github.com/angelmondragon/havenwood-client/pkg/instance"
)

const responseBodyReadLimit int64 = 1 << 20

var errBaseURLRequired = errors.New("commerce base url is required")

// TokenProvider supplies the bearer token attached to authenticated calls.
type TokenProvider interface {
	Token(ctx context.Context) string
}

// Client talks to the remote Havenwood commerce API. It is the only place
// the engine touches the network; every caller treats failures here as
// best-effort sync noise, not operational errors.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenProvider
	deviceID   string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the commerce API client.
func NewClient(cfg config.CommerceConfig, tokens TokenProvider, opts ...Option) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		deviceID:   instance.GetID(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// FetchCart pulls the authenticated customer's remote cart. Items come back
// in their raw wire shape; normalization happens in the cart engine.
func (c *Client) FetchCart(ctx context.Context) ([]map[string]any, error) {
	env, err := c.do(ctx, http.MethodGet, "/cart", nil)
	if err != nil {
		return nil, err
	}
	return itemsFrom(env), nil
}

// SaveCart replaces the remote cart with the given lines.
func (c *Client) SaveCart(ctx context.Context, items []CartItemPayload) error {
	if items == nil {
		items = []CartItemPayload{}
	}
	_, err := c.do(ctx, http.MethodPost, "/cart", map[string]any{"items": items})
	return err
}

// FetchProduct loads a product detail with stock and variant data.
func (c *Client) FetchProduct(ctx context.Context, productID string) (*Product, error) {
	id := strings.TrimSpace(productID)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	env, err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	raw, _ := env.Data["product"].(map[string]any)
	product := parseProduct(raw)
	if product == nil || product.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

// FetchWishlist pulls the authenticated customer's remote wishlist.
func (c *Client) FetchWishlist(ctx context.Context) ([]map[string]any, error) {
	env, err := c.do(ctx, http.MethodGet, "/wishlist", nil)
	if err != nil {
		return nil, err
	}
	return itemsFrom(env), nil
}

// AddWishlistItem saves one product to the remote wishlist.
func (c *Client) AddWishlistItem(ctx context.Context, productID string) error {
	id := strings.TrimSpace(productID)
	if id == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	_, err := c.do(ctx, http.MethodPost, "/wishlist", WishlistItemPayload{ProductID: id})
	return err
}

// RemoveWishlistItem deletes one product from the remote wishlist.
func (c *Client) RemoveWishlistItem(ctx context.Context, productID string) error {
	id := strings.TrimSpace(productID)
	if id == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	_, err := c.do(ctx, http.MethodDelete, "/wishlist/"+url.PathEscape(id), nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (*envelope, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode request")
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Device-Id", c.deviceID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s %s", method, path))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read response")
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "resource not found")
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "commerce api rejected the session")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("commerce api returned status %d", resp.StatusCode))
	}

	var env envelope
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&env); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response")
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "commerce api reported failure"
		}
		return nil, pkgerrors.New(pkgerrors.CodeDependency, msg)
	}
	return &env, nil
}

func itemsFrom(env *envelope) []map[string]any {
	if env == nil || env.Data == nil {
		return nil
	}
	list, ok := env.Data["items"].([]any)
	if !ok {
		return nil
	}
	items := make([]map[string]any, 0, len(list))
	for _, entry := range list {
		if record, ok := entry.(map[string]any); ok {
			items = append(items, record)
		}
	}
	return items
}
