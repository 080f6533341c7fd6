package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go-inventory-ledger/internal/metrics"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrServiceUnavailable = errors.New("products service unavailable")
	ErrMalformedResponse  = errors.New("malformed products service response")
)

// Product is the catalog view this service depends on.
type Product struct {
	ID          uuid.UUID
	Name        string
	Price       decimal.Decimal
	Description string
	CreatedAt   time.Time
}

// ProductClient resolves products from the external catalog service.
type ProductClient interface {
	FetchProduct(ctx context.Context, id uuid.UUID) (*Product, error)
}

type Options struct {
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryWait      time.Duration
	RetryMaxWait   time.Duration
}

type productClient struct {
	baseURL       string
	apiKey        string
	httpClient    *http.Client
	retryAttempts int
	retryWait     time.Duration
	retryMaxWait  time.Duration
	logger        *zap.Logger
}

func NewProductClient(opts Options, logger *zap.Logger) ProductClient {
	if opts.RetryAttempts < 1 {
		opts.RetryAttempts = 1
	}
	return &productClient{
		baseURL:       opts.BaseURL,
		apiKey:        opts.APIKey,
		httpClient:    &http.Client{Timeout: opts.RequestTimeout},
		retryAttempts: opts.RetryAttempts,
		retryWait:     opts.RetryWait,
		retryMaxWait:  opts.RetryMaxWait,
		logger:        logger,
	}
}

// response envelope of the products service:
// {"data": {"type": "product", "id": "...", "attributes": {...}}}
// an absent "data" member means the product does not exist.
type productEnvelope struct {
	Data *struct {
		Type       string            `json:"type"`
		ID         uuid.UUID         `json:"id"`
		Attributes productAttributes `json:"attributes"`
	} `json:"data"`
}

type productAttributes struct {
	Name        string           `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Description string           `json:"description"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// FetchProduct looks up a product by id. Transport failures and 5xx responses
// are retried within the configured budget; not-found and malformed payloads
// are terminal. The call is read-only, so retrying is always safe.
func (c *productClient) FetchProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	start := time.Now()
	defer func() {
		metrics.UpstreamRequestDuration.Observe(time.Since(start).Seconds())
	}()

	var product *Product
	attempt := 0

	operation := func() error {
		attempt++
		p, err := c.fetchOnce(ctx, id)
		if err != nil {
			if errors.Is(err, ErrProductNotFound) || errors.Is(err, ErrMalformedResponse) {
				return backoff.Permanent(err)
			}
			c.logger.Warn("product lookup attempt failed",
				zap.String("product_id", id.String()),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return err
		}
		product = p
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(c.newBackOff(), ctx)); err != nil {
		if errors.Is(err, ErrProductNotFound) || errors.Is(err, ErrMalformedResponse) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	return product, nil
}

func (c *productClient) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryWait
	b.MaxInterval = c.retryMaxWait
	return backoff.WithMaxRetries(b, uint64(c.retryAttempts-1))
}

func (c *productClient) fetchOnce(ctx context.Context, id uuid.UUID) (*Product, error) {
	url := fmt.Sprintf("%s/products/%s", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Internal-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrProductNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("products service returned status %d", resp.StatusCode)
	}

	var envelope productEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if envelope.Data == nil {
		return nil, ErrProductNotFound
	}
	if envelope.Data.Attributes.Price == nil {
		return nil, fmt.Errorf("%w: missing price", ErrMalformedResponse)
	}

	attrs := envelope.Data.Attributes
	return &Product{
		ID:          envelope.Data.ID,
		Name:        attrs.Name,
		Price:       *attrs.Price,
		Description: attrs.Description,
		CreatedAt:   attrs.CreatedAt,
	}, nil
}
