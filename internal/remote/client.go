package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"CatalogDesk/internal/catalog"
)

const (
	RequestIDHeader = "X-Request-Id"

	maxErrorBody = 512
)

var (
	_ catalog.Lister = (*Client)(nil)
	_ catalog.Writer = (*Client)(nil)
)

// Client speaks the remote product store's JSON contract.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Log     *zap.Logger
}

// NewClient uses hc as-is; timeouts belong to the caller's transport.
func NewClient(baseURL string, hc *http.Client, log *zap.Logger) *Client {
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{BaseURL: baseURL, HTTP: hc, Log: log}
}

func (c *Client) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	const op = "remote.ListProducts"

	var out []catalog.Product
	body, status, err := c.do(ctx, op, http.MethodGet, "/products", nil)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &catalog.RemoteError{Op: op, Status: status, Kind: catalog.ErrBadPayload, Cause: err}
	}
	if out == nil {
		out = []catalog.Product{}
	}
	return out, nil
}

func (c *Client) GetProduct(ctx context.Context, id int) (catalog.Product, error) {
	const op = "remote.GetProduct"

	body, status, err := c.do(ctx, op, http.MethodGet, productPath(id), nil)
	if err != nil {
		return catalog.Product{}, err
	}
	p, err := decodeProduct(op, status, body)
	if err != nil {
		return catalog.Product{}, err
	}
	if p.ID == 0 {
		p.ID = id
	}
	return p, nil
}

func (c *Client) CreateProduct(ctx context.Context, payload catalog.Payload) (catalog.Product, error) {
	const op = "remote.CreateProduct"

	body, status, err := c.do(ctx, op, http.MethodPost, "/products", payload)
	if err != nil {
		return catalog.Product{}, err
	}
	p, err := decodeProduct(op, status, body)
	if err != nil {
		return catalog.Product{}, err
	}
	if p.ID == 0 {
		return catalog.Product{}, &catalog.RemoteError{
			Op: op, Status: status, Kind: catalog.ErrBadPayload, Cause: errors.New("created product has no id"),
		}
	}
	return p, nil
}

func (c *Client) ReplaceProduct(ctx context.Context, id int, payload catalog.Payload) (catalog.Product, error) {
	const op = "remote.ReplaceProduct"

	body, status, err := c.do(ctx, op, http.MethodPut, productPath(id), payload)
	if err != nil {
		return catalog.Product{}, err
	}
	p, err := decodeProduct(op, status, body)
	if err != nil {
		return catalog.Product{}, err
	}
	p.ID = id
	return p, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id int) error {
	const op = "remote.DeleteProduct"

	body, status, err := c.do(ctx, op, http.MethodDelete, productPath(id), nil)
	if err != nil {
		return err
	}
	if status == http.StatusNoContent {
		return nil
	}
	if isNullBody(body) {
		return &catalog.RemoteError{Op: op, Status: status, Kind: catalog.ErrNotFound}
	}
	return nil
}

// Ping checks that the remote store answers the collection route.
func (c *Client) Ping(ctx context.Context) error {
	_, _, err := c.do(ctx, "remote.Ping", http.MethodGet, "/products", nil)
	return err
}

func (c *Client) do(ctx context.Context, op, method, path string, in any) ([]byte, int, error) {
	var reqBody io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: encode body: %w", op, err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(RequestIDHeader, requestID(ctx))

	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.Log.Warn("remote store unreachable",
			zap.String("op", op), zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, 0, &catalog.RemoteError{Op: op, Kind: catalog.ErrUnavailable, Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &catalog.RemoteError{
			Op: op, Status: resp.StatusCode, Kind: catalog.ErrUnavailable, Cause: err,
		}
	}

	c.Log.Debug("remote store call",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, resp.StatusCode, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, resp.StatusCode, &catalog.RemoteError{Op: op, Status: resp.StatusCode, Kind: catalog.ErrNotFound}
	default:
		return nil, resp.StatusCode, &catalog.RemoteError{
			Op: op, Status: resp.StatusCode, Kind: catalog.ErrBadStatus, Cause: bodyExcerpt(body),
		}
	}
}

// decodeProduct treats an empty or null 2xx body as not found; the public
// fake store answers unknown ids that way.
func decodeProduct(op string, status int, body []byte) (catalog.Product, error) {
	if isNullBody(body) {
		return catalog.Product{}, &catalog.RemoteError{Op: op, Status: status, Kind: catalog.ErrNotFound}
	}
	var p catalog.Product
	if err := json.Unmarshal(body, &p); err != nil {
		return catalog.Product{}, &catalog.RemoteError{Op: op, Status: status, Kind: catalog.ErrBadPayload, Cause: err}
	}
	return p, nil
}

func isNullBody(body []byte) bool {
	b := bytes.TrimSpace(body)
	return len(b) == 0 || bytes.Equal(b, []byte("null"))
}

func bodyExcerpt(body []byte) error {
	b := bytes.TrimSpace(body)
	if len(b) == 0 {
		return nil
	}
	if len(b) > maxErrorBody {
		b = b[:maxErrorBody]
	}
	return errors.New(string(b))
}

func productPath(id int) string {
	return "/products/" + strconv.Itoa(id)
}

// requestID reuses the inbound chi request id so one user action can be
// followed across both services.
func requestID(ctx context.Context) string {
	if id := chimw.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
