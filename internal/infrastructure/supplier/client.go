package supplier

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/internal/provider"
	"github.com/DRSN-tech/dropship-sync/internal/usecase"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/jitter"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
	"golang.org/x/time/rate"
)

// maxBodySize ограничивает размер читаемого ответа поставщика.
const maxBodySize = 16 << 20

const (
	opList  = "list"
	opStock = "stock"
	opOrder = "order"
)

// RequestObserver получает длительность каждого запроса к поставщику.
type RequestObserver interface {
	ObserveSupplierRequest(provider domain.Provider, operation string, status int, elapsed time.Duration)
}

// Client выполняет аутентифицированные запросы к одному поставщику через его адаптер.
type Client struct {
	adapter     provider.Adapter
	creds       provider.Credentials
	baseURL     string
	http        *http.Client
	limiter     *rate.Limiter
	timeout     time.Duration
	maxRetries  int
	backoffBase time.Duration
	backoffMax  time.Duration
	observer    RequestObserver
	logger      logger.Logger
}

var _ usecase.SupplierClient = (*Client)(nil)

func (c *Client) Provider() domain.Provider {
	return c.adapter.Provider()
}

// ListProducts возвращает разобранный листинг.
func (c *Client) ListProducts(ctx context.Context, category *domain.Category, limit int) ([]domain.SupplierProduct, error) {
	listing, err := c.FetchProducts(ctx, category, limit)
	if err != nil {
		return nil, err
	}
	return listing.Products, nil
}

// FetchProducts запрашивает листинг. limit <= 0 -> provider.DefaultLimit.
// Категория без отображения у поставщика не передаётся, запрос уходит без фильтра.
func (c *Client) FetchProducts(ctx context.Context, category *domain.Category, limit int) (*usecase.SupplierListing, error) {
	const op = "Client.FetchProducts"

	if limit <= 0 {
		limit = provider.DefaultLimit
	}

	q := provider.ListQuery{Limit: limit}
	if category != nil {
		if ext, ok := c.adapter.MapCategoryToExternal(*category); ok {
			q.ExternalCategory = ext
		} else {
			c.logger.Debugf("Category %s has no %s mapping, listing unfiltered", *category, c.Provider())
		}
	}

	raw, _, err := c.read(ctx, opList, c.adapter.BuildListURL(c.baseURL, q, c.creds))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return &usecase.SupplierListing{
		Products: c.adapter.ParseProductList(raw),
		Raw:      raw,
	}, nil
}

// GetStock возвращает остаток; при любой ошибке возвращает 0.
func (c *Client) GetStock(ctx context.Context, externalID string) int {
	level, err := c.StockLevel(ctx, externalID)
	if err != nil {
		c.logger.Warnf("Stock lookup failed, reporting 0. provider: %s, external_id: %s, error: %v", c.Provider(), externalID, err)
		return 0
	}
	return level
}

// StockLevel возвращает остаток или ошибку, чтобы отличить сбой от нулевого наличия.
func (c *Client) StockLevel(ctx context.Context, externalID string) (int, error) {
	const op = "Client.StockLevel"

	raw, _, err := c.read(ctx, opStock, c.adapter.BuildStockURL(c.baseURL, externalID, c.creds))
	if err != nil {
		return 0, e.Wrap(op, err)
	}
	return c.adapter.ParseStockResponse(raw), nil
}

// CreateOrder отправляет заказ один раз. Любой отказ возвращается как *domain.FulfillmentError.
func (c *Client) CreateOrder(ctx context.Context, order domain.SupplierOrder) (*usecase.OrderPlacement, error) {
	body := c.adapter.EncodeOrderRequest(order, c.creds)

	raw, status, err := c.send(ctx, opOrder, http.MethodPost, c.adapter.BuildOrderURL(c.baseURL, c.creds), body)
	if err != nil {
		return nil, &domain.FulfillmentError{Provider: c.Provider(), Message: transportCause(err)}
	}
	if !isSuccess(status) {
		return nil, &domain.FulfillmentError{
			Provider: c.Provider(),
			Status:   status,
			Body:     raw,
			Message:  http.StatusText(status),
		}
	}

	result := c.adapter.ParseOrderResult(raw)
	if result.Rejected {
		return nil, &domain.FulfillmentError{
			Provider: c.Provider(),
			Status:   status,
			Body:     raw,
			Message:  result.Message,
		}
	}

	return &usecase.OrderPlacement{Result: result, Status: status, Raw: raw}, nil
}

// read выполняет идемпотентный GET с повторами на сетевые ошибки, 429 и 5xx.
func (c *Client) read(ctx context.Context, operation, url string) ([]byte, int, error) {
	const op = "Client.read"

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			sleepTime := jitter.ExponentialBackoff(c.backoffBase, c.backoffMax, attempt-1, jitter.DefaultJitter)
			c.logger.Warnf("Supplier %s %s failed, retrying in %v (attempt %d): %v", c.Provider(), operation, sleepTime, attempt, lastErr)

			select {
			case <-time.After(sleepTime):
			case <-ctx.Done():
				return nil, 0, e.Wrap(op, ctx.Err())
			}
		}

		raw, status, err := c.send(ctx, operation, http.MethodGet, url, nil)
		switch {
		case err != nil:
			lastErr = err
		case isSuccess(status):
			return raw, status, nil
		case retryable(status):
			lastErr = fmt.Errorf("%w: status %d", e.ErrTransportFailure, status)
		default:
			return nil, status, fmt.Errorf("%w: status %d: %s", e.ErrTransportFailure, status, snippet(raw))
		}
	}

	return nil, 0, e.Wrap(op, fmt.Errorf("all %d attempts failed: %w", c.maxRetries+1, lastErr))
}

// send выполняет один запрос с таймаутом и ограничением частоты.
func (c *Client) send(ctx context.Context, operation, method, url string, body []byte) ([]byte, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", e.ErrTransportFailure, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(callCtx, method, url, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", e.ErrTransportFailure, err)
	}
	req.Header = c.adapter.BuildHeaders(c.creds)

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observer.ObserveSupplierRequest(c.Provider(), operation, 0, time.Since(started))
		return nil, 0, fmt.Errorf("%w: %v", e.ErrTransportFailure, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	c.observer.ObserveSupplierRequest(c.Provider(), operation, resp.StatusCode, time.Since(started))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read body: %v", e.ErrTransportFailure, err)
	}

	return raw, resp.StatusCode, nil
}

// transportCause снимает префикс ErrTransportFailure: FulfillmentError добавляет его сам.
func transportCause(err error) string {
	return strings.TrimPrefix(err.Error(), e.ErrTransportFailure.Error()+": ")
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func snippet(raw []byte) string {
	const limit = 256
	if len(raw) > limit {
		return string(raw[:limit]) + "..."
	}
	return string(raw)
}
