package transport

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

	"github.com/rs/zerolog"
)

const defaultTimeout = 30 * time.Second

// RawRequest is a Request after its body has been encoded.
type RawRequest struct {
	Method  Method
	Path    string
	Headers map[string]string
	Body    []byte
}

// RawResponse is what a Requester hands back for any completed exchange,
// whatever the status code.
type RawResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Requester sends one request and returns one response. An error means the
// exchange did not complete; HTTP error statuses are not errors here.
type Requester interface {
	Do(ctx context.Context, req RawRequest) (*RawResponse, error)
}

// RequesterFunc adapts a function to Requester.
type RequesterFunc func(ctx context.Context, req RawRequest) (*RawResponse, error)

// Do calls f.
func (f RequesterFunc) Do(ctx context.Context, req RawRequest) (*RawResponse, error) {
	return f(ctx, req)
}

// IsSuccess classifies a status code: 200 through 299 succeed.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}

// Config holds HTTPRequester configuration.
type Config struct {
	// BaseURL is prefixed to every request path (for example: http://localhost:8080).
	BaseURL string
	// Timeout bounds each exchange when HTTPClient is nil. Defaults to 30s.
	Timeout time.Duration
	// HTTPClient overrides the client used to send requests.
	HTTPClient *http.Client
	// Headers are sent with every request; per-request headers win.
	Headers map[string]string
	Logger  *zerolog.Logger
}

// HTTPRequester is a Requester backed by net/http.
type HTTPRequester struct {
	baseURL string
	client  *http.Client
	headers map[string]string
	log     zerolog.Logger
}

// NewHTTPRequester validates cfg and builds a requester.
func NewHTTPRequester(cfg Config) (*HTTPRequester, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("transport: BaseURL is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("transport: invalid BaseURL %q", cfg.BaseURL)
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", "transport").Logger()
	}
	return &HTTPRequester{baseURL: baseURL, client: client, headers: cfg.Headers, log: logger}, nil
}

// Do sends req. content-type is forced to application/json whenever a body
// is present.
func (h *HTTPRequester) Do(ctx context.Context, req RawRequest) (*RawResponse, error) {
	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method.HTTP(), h.baseURL+req.Path, body)
	if err != nil {
		return nil, fmt.Errorf("building %s %s: %w", req.Method.HTTP(), req.Path, err)
	}
	for k, v := range h.headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if len(req.Body) > 0 {
		httpReq.Header.Set("content-type", "application/json")
	}

	start := time.Now()
	resp, err := h.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending %s %s: %w", req.Method.HTTP(), req.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s %s response: %w", req.Method.HTTP(), req.Path, err)
	}
	h.log.Debug().
		Str("method", req.Method.HTTP()).
		Str("path", req.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request completed")
	return &RawResponse{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// HTTPError is the error payload produced by Call. StatusCode is zero when
// the exchange never completed, in which case Err is set.
type HTTPError[E any] struct {
	StatusCode int
	// Payload is the decoded response body, nil when it did not decode as E
	Payload *E
	Body    []byte
	Err     error
}

func (e *HTTPError[E]) Error() string {
	if e.Err != nil {
		if e.StatusCode != 0 {
			return fmt.Sprintf("status %d: %v", e.StatusCode, e.Err)
		}
		return e.Err.Error()
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *HTTPError[E]) Unwrap() error { return e.Err }

// Call encodes req, sends it through r and classifies the response. It never
// panics on transport failure; every failure is the error variant.
func Call[T, E, B any](ctx context.Context, r Requester, req Request[B]) Result[T, *HTTPError[E]] {
	fail := func(e *HTTPError[E]) Result[T, *HTTPError[E]] {
		return Err[T](e)
	}
	if err := req.Validate(); err != nil {
		return fail(&HTTPError[E]{Err: err})
	}

	raw := RawRequest{Method: req.Method, Path: req.Path, Headers: req.Headers}
	if req.Body != nil {
		b, err := json.Marshal(*req.Body)
		if err != nil {
			return fail(&HTTPError[E]{Err: fmt.Errorf("encoding request body: %w", err)})
		}
		raw.Body = b
	}

	resp, err := r.Do(ctx, raw)
	if err != nil {
		return fail(&HTTPError[E]{Err: err})
	}

	if !IsSuccess(resp.StatusCode) {
		herr := &HTTPError[E]{StatusCode: resp.StatusCode, Body: resp.Body}
		if len(bytes.TrimSpace(resp.Body)) > 0 {
			var payload E
			if json.Unmarshal(resp.Body, &payload) == nil {
				herr.Payload = &payload
			}
		}
		return fail(herr)
	}

	var v T
	if len(bytes.TrimSpace(resp.Body)) > 0 {
		if err := json.Unmarshal(resp.Body, &v); err != nil {
			return fail(&HTTPError[E]{
				StatusCode: resp.StatusCode,
				Body:       resp.Body,
				Err:        fmt.Errorf("decoding response body: %w", err),
			})
		}
	}
	return Ok[T, *HTTPError[E]](v)
}
