package novaera

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/trackwise-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/trackwise-backend/pkg/errors"
	"github.com/angelmondragon/trackwise-backend/pkg/metrics"
)

const (
	defaultBaseURL            = "https://api.novaera-pagamentos.com/api/v1"
	defaultTimeout            = 15 * time.Second
	responseBodyLimit   int64 = 1 << 20
	errorBodyLimit      int64 = 4096
	opCreateTransaction       = "create_transaction"
	opGetTransaction          = "get_transaction"
)

// Messages surfaced to API clients.
const (
	MsgNotConfigured   = "NovaEra não configurada. Defina SK e PK em /api/settings."
	MsgCreateFailed    = "Falha ao criar transação na NovaEra"
	MsgInvalidResponse = "Resposta inválida da NovaEra"
	MsgLookupFailed    = "Falha ao consultar transação na NovaEra"
)

// Client calls the NovaEra transactions API. Credentials are supplied per
// call because they live in the settings store.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *metrics.PaymentMetrics
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

// WithMetrics records request latency on m.
func WithMetrics(m *metrics.PaymentMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient builds a client from config.
func NewClient(cfg config.NovaEraConfig, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
	if trimmed := strings.TrimSpace(cfg.BaseURL); trimmed != "" {
		client.baseURL = trimmed
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// BaseURL returns the API root in use.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CreateTransaction posts a new PIX charge. Calls are never retried.
func (c *Client) CreateTransaction(ctx context.Context, creds Credentials, req CreateTransactionRequest) (tx Transaction, err error) {
	if !creds.Configured() {
		return Transaction{}, pkgerrors.New(pkgerrors.CodeProviderNotConfigured, MsgNotConfigured)
	}
	defer c.observe(opCreateTransaction, time.Now(), &err)

	payload, err := json.Marshal(req)
	if err != nil {
		return Transaction{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal transaction request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL("transactions/"), bytes.NewReader(payload))
	if err != nil {
		return Transaction{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build transaction request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", creds.Authorization())

	body, status, err := c.do(httpReq)
	if err != nil {
		return Transaction{}, providerError(MsgCreateFailed, 0, err.Error())
	}
	if status < 200 || status > 299 {
		return Transaction{}, providerError(MsgCreateFailed, status, truncate(body))
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Transaction{}, providerError(MsgCreateFailed, status, "invalid JSON response")
	}
	if env.Data == nil {
		return Transaction{}, nil
	}
	return *env.Data, nil
}

// GetTransaction fetches a transaction and returns the upstream JSON verbatim.
func (c *Client) GetTransaction(ctx context.Context, creds Credentials, id string) (raw json.RawMessage, err error) {
	if !creds.Configured() {
		return nil, pkgerrors.New(pkgerrors.CodeProviderNotConfigured, MsgNotConfigured)
	}
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id is required")
	}
	defer c.observe(opGetTransaction, time.Now(), &err)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL("transactions/"+url.PathEscape(trimmed)), nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build transaction lookup")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", creds.Authorization())

	body, status, err := c.do(httpReq)
	if err != nil {
		return nil, providerError(MsgLookupFailed, 0, err.Error())
	}
	if status < 200 || status > 299 {
		return nil, providerError(MsgLookupFailed, status, truncate(body))
	}
	if !json.Valid(body) {
		return nil, pkgerrors.New(pkgerrors.CodeProvider, MsgInvalidResponse)
	}
	return json.RawMessage(body), nil
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

func (c *Client) observe(operation string, start time.Time, err *error) {
	c.metrics.ObserveProvider(operation, *err, time.Since(start))
}

func (c *Client) buildURL(path string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(c.baseURL, "/"), strings.TrimLeft(path, "/"))
}

func providerError(message string, status int, body string) *pkgerrors.Error {
	details := map[string]any{"body": body}
	if status > 0 {
		details["status"] = status
	}
	return pkgerrors.New(pkgerrors.CodeProvider, message).WithDetails(details)
}

func truncate(body []byte) string {
	if int64(len(body)) > errorBodyLimit {
		body = body[:errorBodyLimit]
	}
	return strings.TrimSpace(string(body))
}
