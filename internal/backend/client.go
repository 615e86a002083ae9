// Package backend implements the HTTP client for the inventory backend. The
// backend owns the product store, the sales ledger and the speech
// interpretation pipeline; this client only moves data across.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"voxstock/internal/domain"
	"voxstock/internal/ports"
	"voxstock/internal/resilience"
)

const userIDHeader = "X-User-ID"

// Config controls endpoint resolution and request policy.
type Config struct {
	BaseURL string

	// Upload is the executor for the audio command upload (long deadline,
	// single attempt). Read is for idempotent listings (retried). Write is
	// for batch submissions (single attempt, so a flaky network can never
	// double-submit a sale).
	Upload *resilience.Executor
	Read   *resilience.Executor
	Write  *resilience.Executor
}

// Client talks to the inventory backend. Every request carries the caller's
// opaque user identifier so the backend can scope inventory and sales.
type Client struct {
	cfg      Config
	http     *http.Client
	identity ports.IdentityProvider
	logger   *slog.Logger
}

func NewClient(cfg Config, identity ports.IdentityProvider, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:      cfg,
		http:     &http.Client{},
		identity: identity,
		logger:   logger,
	}
}

// SubmitAudio uploads one assembled recording and returns the backend's
// parsed command. A response whose action is "unknown" is reported as
// ports.ErrCommandNotUnderstood, not as a usable command.
func (c *Client) SubmitAudio(ctx context.Context, blob domain.AudioBlob) (domain.ParsedCommand, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename=%q`, blob.FileName))
	header.Set("Content-Type", blob.MimeType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return domain.ParsedCommand{}, fmt.Errorf("failed to build upload body: %w", err)
	}
	if _, err := part.Write(blob.Data); err != nil {
		return domain.ParsedCommand{}, fmt.Errorf("failed to build upload body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return domain.ParsedCommand{}, fmt.Errorf("failed to build upload body: %w", err)
	}

	var cmd domain.ParsedCommand
	err = c.cfg.Upload.Do(ctx, "command_audio", func(ctx context.Context) error {
		req, err := c.newRequest(ctx, http.MethodPost, "/command/audio", bytes.NewReader(body.Bytes()))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", writer.FormDataContentType())
		return c.doJSON(req, &cmd)
	})
	if err != nil {
		return domain.ParsedCommand{}, err
	}

	if cmd.Action == domain.ActionUnknown {
		return domain.ParsedCommand{}, fmt.Errorf("%w: %s", ports.ErrCommandNotUnderstood, cmd.OriginalText)
	}

	c.logger.Info("audio command parsed",
		"action", string(cmd.Action), "products", len(cmd.Products))
	return cmd, nil
}

// ListProducts fetches the current product list.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	err := c.cfg.Read.DoIdempotent(ctx, "list_products", func(ctx context.Context) error {
		req, err := c.newRequest(ctx, http.MethodGet, "/products", nil)
		if err != nil {
			return err
		}
		return c.doJSON(req, &products)
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

// ListSales fetches the sales history.
func (c *Client) ListSales(ctx context.Context) ([]domain.Sale, error) {
	var sales []domain.Sale
	err := c.cfg.Read.DoIdempotent(ctx, "list_sales", func(ctx context.Context) error {
		req, err := c.newRequest(ctx, http.MethodGet, "/sales", nil)
		if err != nil {
			return err
		}
		return c.doJSON(req, &sales)
	})
	if err != nil {
		return nil, err
	}
	return sales, nil
}

// AddProducts submits one validated batch to the stock addition endpoint and
// returns the number of processed entries.
func (c *Client) AddProducts(ctx context.Context, products []domain.ProductCandidate) (int, error) {
	payload := struct {
		Products []domain.ProductCandidate `json:"products"`
	}{Products: products}

	var raw json.RawMessage
	err := c.cfg.Write.Do(ctx, "add_products", func(ctx context.Context) error {
		req, err := c.newJSONRequest(ctx, http.MethodPost, "/products/add-multiple", payload)
		if err != nil {
			return err
		}
		return c.doJSON(req, &raw)
	})
	if err != nil {
		return 0, err
	}
	return processedCount(raw, len(products)), nil
}

// ConfirmSale submits one validated batch to the sales confirmation endpoint.
func (c *Client) ConfirmSale(ctx context.Context, items []domain.ProductCandidate) (domain.SaleReceipt, error) {
	var receipt domain.SaleReceipt
	err := c.cfg.Write.Do(ctx, "confirm_sale", func(ctx context.Context) error {
		req, err := c.newJSONRequest(ctx, http.MethodPost, "/sales/confirm", items)
		if err != nil {
			return err
		}
		return c.doJSON(req, &receipt)
	})
	if err != nil {
		return domain.SaleReceipt{}, err
	}
	return receipt, nil
}

func (c *Client) newRequest(ctx context.Context, method string, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.Header.Set(userIDHeader, c.identity.UserID())
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) newJSONRequest(ctx context.Context, method string, path string, payload any) (*http.Request, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request for %s: %w", path, err)
	}
	req, err := c.newRequest(ctx, method, path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ports.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ports.ErrBackendUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp.StatusCode, data)
		c.logger.Warn("backend rejected request",
			"path", req.URL.Path, "status", resp.StatusCode, "detail", apiErr.Detail)
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", req.URL.Path, err)
	}
	return nil
}

// processedCount handles both response variants of the stock addition
// endpoint: a raw array echoing the stored products, or an object with a
// processed count.
func processedCount(raw json.RawMessage, fallback int) int {
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil && list != nil {
		return len(list)
	}
	var obj struct {
		Processed int `json:"processed"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Processed > 0 {
		return obj.Processed
	}
	return fallback
}

// APIError is a non-2xx backend response, with the detail message when the
// backend provided one.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Detail)
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Detail = strings.TrimSpace(payload.Detail)
	}
	return apiErr
}

// Detail extracts the backend-provided detail from an error chain, if any.
func Detail(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail, true
	}
	return "", false
}
