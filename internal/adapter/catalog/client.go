package catalog

import (
	"context"
	"errors"
	"fmt"
	"net"

	"storefront-wallet/config"
	"storefront-wallet/internal/core/domain"
	"storefront-wallet/pkg/apperror"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// Client implements ports.CatalogClient against a fakestore-style product
// API. Transport failures are mapped onto the taxonomy so callers can branch
// on the error code: timeout -> API_001, unreachable -> API_002, HTTP error
// status -> API_003.
type Client struct {
	http *resty.Client
	log  zerolog.Logger
}

// New creates a catalog client for the configured base URL.
func New(cfg config.CatalogConfig, log zerolog.Logger) *Client {
	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		http: http,
		log:  log.With().Str("component", "catalog.Client").Logger(),
	}
}

// ListProducts fetches the full product catalog.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	const endpoint = "/products"

	var products []domain.Product
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&products).
		Get(endpoint)
	if err := c.mapError(endpoint, resp, err); err != nil {
		return nil, err
	}

	c.log.Debug().Int("count", len(products)).Msg("catalog listed")
	return products, nil
}

// GetProduct fetches a single product by ID.
func (c *Client) GetProduct(ctx context.Context, id int) (*domain.Product, error) {
	endpoint := fmt.Sprintf("/products/%d", id)

	var product domain.Product
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&product).
		Get(endpoint)
	if err := c.mapError(endpoint, resp, err); err != nil {
		return nil, err
	}

	return &product, nil
}

// mapError folds a resty outcome into the taxonomy.
func (c *Client) mapError(endpoint string, resp *resty.Response, err error) error {
	if err != nil {
		if isTimeout(err) {
			c.log.Warn().Str("endpoint", endpoint).Msg("catalog request timed out")
			return apperror.ErrAPITimeout(endpoint)
		}
		c.log.Warn().Err(err).Str("endpoint", endpoint).Msg("catalog unreachable")
		return apperror.ErrAPINetworkError(endpoint, err)
	}
	if resp.IsError() {
		c.log.Warn().
			Int("status", resp.StatusCode()).
			Str("endpoint", endpoint).
			Msg("catalog responded with error")
		return apperror.ErrAPIRequestFailed(resp.StatusCode(), endpoint)
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
