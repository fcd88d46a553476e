// Package gateway relays requests received under a fixed path prefix to a
// single upstream origin and copies the upstream response back.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ashureev/taskboard/internal/api"
	"github.com/ashureev/taskboard/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// DefaultTimeout bounds a single upstream call when no client is supplied.
const DefaultTimeout = 30 * time.Second

// Stage identifies where a forwarded request failed.
type Stage string

const (
	StageBuild  Stage = "build"
	StageCall   Stage = "call"
	StageDecode Stage = "decode"
)

// UpstreamError is any failure while building, sending, or reading a
// forwarded request. Only its message crosses the gateway boundary.
type UpstreamError struct {
	Stage Stage
	Err   error
}

func (e *UpstreamError) Error() string {
	return e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Response is a fully buffered upstream response ready to be relayed.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// Forwarder relays requests to one upstream origin. It holds no per-request
// state and is safe for concurrent use.
type Forwarder struct {
	upstream string
	prefix   string
	client   *http.Client
	metrics  *Metrics
	logger   *slog.Logger
}

// Option configures a Forwarder.
type Option func(*Forwarder)

// WithHTTPClient sets the client used for upstream calls.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Forwarder) {
		f.client = c
	}
}

// WithTimeout bounds each upstream call.
func WithTimeout(d time.Duration) Option {
	return func(f *Forwarder) {
		f.client = &http.Client{Timeout: d}
	}
}

// WithMetrics records traffic into m.
func WithMetrics(m *Metrics) Option {
	return func(f *Forwarder) {
		f.metrics = m
	}
}

// WithLogger sets the logger used for proxy errors.
func WithLogger(l *slog.Logger) Option {
	return func(f *Forwarder) {
		f.logger = l
	}
}

// NewForwarder creates a forwarder for upstream (an origin such as
// "http://backend:5000") mounted under prefix.
func NewForwarder(upstream, prefix string, opts ...Option) *Forwarder {
	f := &Forwarder{
		upstream: strings.TrimRight(upstream, "/"),
		prefix:   strings.TrimRight(prefix, "/"),
		client:   &http.Client{Timeout: DefaultTimeout},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Handler returns the gateway endpoint: permissive CORS on every response,
// preflight answered locally, everything else forwarded.
func (f *Forwarder) Handler() http.Handler {
	return middleware.CORS([]string{"*"})(http.HandlerFunc(f.serve))
}

// RegisterRoutes mounts the gateway at its prefix.
func (f *Forwarder) RegisterRoutes(r chi.Router) {
	h := f.Handler()
	r.Handle(f.prefix, h)
	r.Handle(f.prefix+"/*", h)
}

func (f *Forwarder) serve(w http.ResponseWriter, r *http.Request) {
	req, err := f.buildRequest(r)
	if err != nil {
		f.fail(w, r, &UpstreamError{Stage: StageBuild, Err: err})
		return
	}

	resp, err := f.Forward(r.Context(), req)
	if err != nil {
		f.fail(w, r, err)
		return
	}

	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	w.WriteHeader(resp.Status)
	if _, err := w.Write(resp.Body); err != nil {
		f.logger.Debug("gateway: failed to write response body", "path", r.URL.Path, "error", err)
	}
	f.metrics.observeRequest(r.Method, resp.Status)
}

func (f *Forwarder) buildRequest(r *http.Request) (*Request, error) {
	rawURL := r.RequestURI
	if rawURL == "" {
		rawURL = r.URL.RequestURI()
	}

	segments, err := routeSegments(r)
	if err != nil {
		return nil, err
	}
	path, err := ResolvePath(f.prefix, segments, rawURL)
	if err != nil {
		return nil, err
	}

	var body any
	if allowsBody(r.Method) && r.Body != nil {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, fmt.Errorf("read request body: %w", err)
		}
		body = data
	}

	return NewRequest(r.Method, path, QueryString(rawURL), r.Header, body)
}

// Forward sends req upstream and buffers the response. JSON responses are
// parsed and re-serialized; anything else is returned as opaque bytes.
func (f *Forwarder) Forward(ctx context.Context, req *Request) (*Response, error) {
	out, err := http.NewRequestWithContext(ctx, req.Method, req.URL(f.upstream), req.bodyReader())
	if err != nil {
		return nil, &UpstreamError{Stage: StageBuild, Err: fmt.Errorf("create upstream request: %w", err)}
	}
	for name, values := range req.Header {
		out.Header[name] = values
	}

	start := time.Now()
	resp, err := f.client.Do(out)
	f.metrics.observeUpstream(req.Method, time.Since(start))
	if err != nil {
		return nil, &UpstreamError{Stage: StageCall, Err: err}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			f.logger.Debug("gateway: failed to close upstream body", "error", closeErr)
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Stage: StageCall, Err: fmt.Errorf("read upstream body: %w", err)}
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		return &Response{Status: resp.StatusCode, ContentType: contentType, Body: data}, nil
	}

	if len(bytes.TrimSpace(data)) == 0 && !expectsBody(req.Method, resp.StatusCode) {
		return &Response{Status: resp.StatusCode, ContentType: "application/json"}, nil
	}
	body, err := reencodeJSON(data)
	if err != nil {
		return nil, &UpstreamError{Stage: StageDecode, Err: err}
	}
	return &Response{Status: resp.StatusCode, ContentType: "application/json", Body: body}, nil
}

func (f *Forwarder) fail(w http.ResponseWriter, r *http.Request, err error) {
	stage := StageCall
	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		stage = upErr.Stage
	}

	f.logger.Error("Proxy error", "method", r.Method, "path", r.URL.Path, "stage", stage, "error", err)
	f.metrics.observeFailure(stage)
	f.metrics.observeRequest(r.Method, http.StatusInternalServerError)

	api.Fail(w, http.StatusInternalServerError, "Proxy error", err)
}

// routeSegments returns the catch-all segments chi matched. chi routes on
// RawPath when one is present, in which case the segments are still escaped.
func routeSegments(r *http.Request) ([]string, error) {
	param := chi.URLParam(r, "*")
	if param == "" {
		return nil, nil
	}
	if r.URL.RawPath != "" {
		return SplitSegments(param)
	}
	return strings.Split(param, "/"), nil
}

// expectsBody reports whether an upstream response must carry a body.
func expectsBody(method string, status int) bool {
	if method == http.MethodHead {
		return false
	}
	return status != http.StatusNoContent && status != http.StatusNotModified
}

func reencodeJSON(data []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode upstream json: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decode upstream json: trailing data after top-level value")
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode relayed json: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
