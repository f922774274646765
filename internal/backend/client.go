package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/fittrack/web/internal/session"
	"github.com/fittrack/web/internal/telemetry/metrics"
	"github.com/fittrack/web/internal/telemetry/tracing"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultTimeout = 5 * time.Second
	maxBodySize    = 10 << 20
)

// Client is the credentialed request primitive against the fitness REST backend.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	metricsManager *metrics.Manager
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Cookies parses the Set-Cookie headers of the backend response.
func (r *Response) Cookies() []*http.Cookie {
	return (&http.Response{Header: r.Header}).Cookies()
}

func NewTracedHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   timeout,
		// redirects of the backend are relayed, not followed
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func NewClient(baseURL string, httpClient *http.Client, metricsManager *metrics.Manager) *Client {
	return &Client{
		baseURL:        baseURL,
		httpClient:     httpClient,
		metricsManager: metricsManager,
	}
}

// Do sends payload as JSON. A nil payload sends no body.
func (c *Client) Do(ctx context.Context, method, path string, cred *session.Credential, payload any) (*Response, error) {
	if payload == nil {
		return c.DoRaw(ctx, method, path, cred, "", nil)
	}

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}
	return c.DoRaw(ctx, method, path, cred, "application/json", bytes.NewReader(reqBody))
}

// DoRaw issues one request, attaching the credential cookies. Any non-2xx answer
// is returned as *APIError together with the response.
func (c *Client) DoRaw(
	ctx context.Context,
	method, path string,
	cred *session.Credential,
	contentType string,
	body io.Reader,
) (*Response, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "backend.request")
	defer span.End()
	span.SetAttributes(
		attribute.String("backend.method", method),
		attribute.String("backend.path", path),
	)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	cred.Attach(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.countRequest(method, "error")
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.countRequest(method, strconv.Itoa(resp.StatusCode))
	span.SetAttributes(attribute.Int("backend.status", resp.StatusCode))

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("read response body: %w", err)
	}

	response := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp.StatusCode, respBody)
		span.SetStatus(codes.Error, apiErr.Error())
		return response, apiErr
	}

	span.SetStatus(codes.Ok, "ok")
	return response, nil
}

func (c *Client) countRequest(method, status string) {
	if c.metricsManager == nil {
		return
	}
	c.metricsManager.CounterBackendRequests.WithLabelValues(method, status).Inc()
}
