package resthttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/billedhq/billed/internal/models"
	"github.com/billedhq/billed/internal/store"
	"go.uber.org/zap"
)

// HTTPClient interface for testability
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds the remote store endpoint settings.
type Config struct {
	BaseURL string
	Token   string // bearer token issued at login
	Timeout time.Duration
}

// Client talks to the remote expense store over HTTP.
type Client struct {
	baseURL    string
	token      string
	httpClient HTTPClient
	logger     *zap.Logger
}

// New creates a remote store client.
func New(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// SetHTTPClient swaps the underlying transport, used by tests.
func (c *Client) SetHTTPClient(hc HTTPClient) { c.httpClient = hc }

// Bills returns the bills resource.
func (c *Client) Bills() store.BillsResource {
	return &billsResource{client: c}
}

type billsResource struct {
	client *Client
}

// List fetches every bill visible to the authenticated user.
func (r *billsResource) List(ctx context.Context) ([]models.Bill, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.client.baseURL+"/bills", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	r.client.authorize(req)

	body, err := r.client.do(req, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("list bills failed: %w", err)
	}

	var bills []models.Bill
	if err := json.Unmarshal(body, &bills); err != nil {
		return nil, fmt.Errorf("failed to decode bill list: %w", err)
	}
	return bills, nil
}

// Create uploads the receipt as a multipart payload and returns the
// draft key and hosted file URL.
func (r *billsResource) Create(ctx context.Context, upload store.Upload) (*store.CreateResult, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", upload.FileName)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart payload: %w", err)
	}
	if _, err := io.Copy(part, upload.File); err != nil {
		return nil, fmt.Errorf("failed to read receipt file: %w", err)
	}
	if err := writer.WriteField("email", upload.Email); err != nil {
		return nil, fmt.Errorf("failed to build multipart payload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.client.baseURL+"/bills", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	// The boundary is decided here, never negotiated upstream.
	req.Header.Set("Content-Type", writer.FormDataContentType())
	r.client.authorize(req)

	body, err := r.client.do(req, http.StatusOK, http.StatusCreated)
	if err != nil {
		return nil, fmt.Errorf("create bill failed: %w", err)
	}

	var result store.CreateResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode create result: %w", err)
	}
	return &result, nil
}

// Update persists a bill under a previously issued key.
func (r *billsResource) Update(ctx context.Context, bill *models.Bill, selector string) error {
	payload, err := json.Marshal(bill)
	if err != nil {
		return fmt.Errorf("failed to serialize bill: %w", err)
	}

	url := fmt.Sprintf("%s/bills/%s", r.client.baseURL, selector)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	r.client.authorize(req)

	if _, err := r.client.do(req, http.StatusOK, http.StatusNoContent); err != nil {
		return fmt.Errorf("update bill failed: %w", err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}
}

// do executes the request and returns the body when the status is one of
// the accepted codes.
func (c *Client) do(req *http.Request, accepted ...int) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Store request failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("Failed to read store response", zap.Error(err))
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	for _, code := range accepted {
		if resp.StatusCode == code {
			return body, nil
		}
	}

	c.logger.Warn("Store returned unexpected status",
		zap.Int("status", resp.StatusCode),
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()))
	return nil, fmt.Errorf("store returned status %d", resp.StatusCode)
}
