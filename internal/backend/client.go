// Package backend is a typed HTTP client for the analytics backend: map data,
// analytics, ingestion stats and logs, CSV upload, governance actions and
// credential checks.
//
// Every call is traced and timed. Failures unwrap to pkg/platform/sentinel
// errors so callers can tell an unreachable backend (ErrUnavailable) from a
// refusal (ErrRejected) without parsing status codes.
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
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"govdash/internal/region"
	"govdash/pkg/platform/circuit"
	"govdash/pkg/platform/sentinel"
	"govdash/pkg/requestcontext"
)

// Endpoint names, used as span names and metric labels.
const (
	EndpointMapData      = "map-data"
	EndpointAnalytics    = "analytics"
	EndpointStats        = "stats"
	EndpointLogs         = "logs"
	EndpointUploadCSV    = "upload-csv"
	EndpointCreateAction = "create-action"
	EndpointLogin        = "login"
	EndpointReset        = "reset"
)

const maxErrorBody = 64 << 10

// Recorder receives per-call latency and failure observations.
type Recorder interface {
	ObserveBackendCall(endpoint string, d time.Duration)
	IncrementBackendFailure(endpoint, reason string)
}

// Client talks to the analytics backend. It is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *slog.Logger
	metrics Recorder
	tracer  trace.Tracer
	breaker *circuit.Breaker
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithMetrics(m Recorder) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithTracer overrides the tracer taken from the global otel provider.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = t
	}
}

// WithBreaker fails calls fast with ErrUnavailable while b is open. Only
// unavailability counts as a failure; refusals prove the backend is up.
func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) {
		c.breaker = b
	}
}

// New builds a client for the backend rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  slog.Default(),
		tracer:  otel.Tracer("govdash/internal/backend"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// MapData fetches the per-region metric bundle, preserving the backend's key
// order.
func (c *Client) MapData(ctx context.Context) (*region.Bundle, error) {
	bundle := &region.Bundle{}
	if err := c.getJSON(ctx, EndpointMapData, "/api/map-data", nil, bundle); err != nil {
		return nil, err
	}
	return bundle, nil
}

// Analytics fetches the trend, breakdown and forecast for a layer.
func (c *Client) Analytics(ctx context.Context, layer string) (*Analytics, error) {
	var out Analytics
	q := url.Values{"category": {layer}}
	if err := c.getJSON(ctx, EndpointAnalytics, "/api/analytics", q, &out); err != nil {
		return nil, err
	}
	if out.Trend == nil {
		out.Trend = []TrendPoint{}
	}
	if out.AgeDistribution == nil {
		out.AgeDistribution = []DistributionBucket{}
	}
	return &out, nil
}

func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var out Stats
	if err := c.getJSON(ctx, EndpointStats, "/api/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logs returns the most recent ingestion log rows, newest first.
func (c *Client) Logs(ctx context.Context) ([]UploadLog, error) {
	var out []UploadLog
	if err := c.getJSON(ctx, EndpointLogs, "/api/logs", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []UploadLog{}
	}
	return out, nil
}

// UploadCSVRequest describes one file sent for ingestion.
type UploadCSVRequest struct {
	FileName    string
	Content     io.Reader
	DatasetType string
	UploaderID  string
}

// UploadCSV sends a CSV as multipart form data. The backend parses and merges
// it synchronously, so this call may take as long as ingestion does.
func (c *Client) UploadCSV(ctx context.Context, req UploadCSVRequest) (*UploadResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", req.FileName)
	if err != nil {
		return nil, fmt.Errorf("build upload form: %w", err)
	}
	if _, err := io.Copy(part, req.Content); err != nil {
		return nil, fmt.Errorf("copy upload content: %w", err)
	}
	if err := mw.WriteField("dataset_type", req.DatasetType); err != nil {
		return nil, fmt.Errorf("build upload form: %w", err)
	}
	if err := mw.WriteField("uploader_id", req.UploaderID); err != nil {
		return nil, fmt.Errorf("build upload form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build upload form: %w", err)
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/api/upload-csv", nil, &body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	var out UploadResult
	if err := c.do(ctx, EndpointUploadCSV, httpReq, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateAction records a governance action and returns the backend id.
func (c *Client) CreateAction(ctx context.Context, req CreateActionRequest) (*CreateActionResponse, error) {
	var out CreateActionResponse
	if err := c.postJSON(ctx, EndpointCreateAction, "/api/create-action", req, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, fmt.Errorf("backend %s: %w: acknowledgement without id", EndpointCreateAction, sentinel.ErrMalformed)
	}
	return &out, nil
}

// Login checks credentials. Bad credentials unwrap to sentinel.ErrRejected
// with the backend's detail available via Detail.
func (c *Client) Login(ctx context.Context, userID, password string) (*User, error) {
	var out loginResponse
	if err := c.postJSON(ctx, EndpointLogin, "/api/login", loginRequest{UserID: userID, Password: password}, &out); err != nil {
		return nil, err
	}
	if out.User.ID == "" {
		return nil, fmt.Errorf("backend %s: %w: response without user", EndpointLogin, sentinel.ErrMalformed)
	}
	return &out.User, nil
}

// Reset asks the backend to drop every ingested table and log.
func (c *Client) Reset(ctx context.Context) (string, error) {
	var out statusResponse
	if err := c.postJSON(ctx, EndpointReset, "/api/reset", nil, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint, path string, q url.Values, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, q, nil)
	if err != nil {
		return err
	}
	return c.do(ctx, endpoint, req, out)
}

func (c *Client) postJSON(ctx context.Context, endpoint, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", endpoint, err)
		}
		body = bytes.NewReader(buf)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(ctx, endpoint, req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, q url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL.JoinPath(path)
	if q != nil {
		u.RawQuery = q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if id := requestcontext.RequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}
	return req, nil
}

// do executes req, decoding a 2xx JSON body into out. It owns tracing,
// metrics and error classification for every endpoint.
func (c *Client) do(ctx context.Context, endpoint string, req *http.Request, out any) (err error) {
	if c.breaker != nil {
		if !c.breaker.Allow() {
			if c.metrics != nil {
				c.metrics.IncrementBackendFailure(endpoint, "circuit_open")
			}
			return fmt.Errorf("backend %s: %w: circuit open", endpoint, sentinel.ErrUnavailable)
		}
		defer func() { c.recordOutcome(ctx, err) }()
	}

	ctx, span := c.tracer.Start(ctx, "backend."+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.URL.Path),
		),
	)
	start := time.Now()
	defer func() {
		if c.metrics != nil {
			c.metrics.ObserveBackendCall(endpoint, time.Since(start))
		}
		if err != nil {
			if c.metrics != nil {
				c.metrics.IncrementBackendFailure(endpoint, failureReason(err))
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	req = req.WithContext(ctx)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "backend unreachable",
			"endpoint", endpoint,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return fmt.Errorf("backend %s: %w: %v", endpoint, sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		se := newStatusError(endpoint, resp.StatusCode, body)
		c.logger.WarnContext(ctx, "backend returned error status",
			"endpoint", endpoint,
			"status", resp.StatusCode,
			"detail", se.Detail,
			"request_id", requestcontext.RequestID(ctx),
		)
		return se
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("backend %s: %w: empty body", endpoint, sentinel.ErrMalformed)
		}
		return fmt.Errorf("backend %s: %w: %v", endpoint, sentinel.ErrMalformed, err)
	}
	return nil
}

func (c *Client) recordOutcome(ctx context.Context, err error) {
	if errors.Is(err, sentinel.ErrUnavailable) {
		if _, change := c.breaker.RecordFailure(); change.Opened {
			c.logger.ErrorContext(ctx, "backend circuit opened", "breaker", c.breaker.Name())
		}
		return
	}
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "backend circuit closed", "breaker", c.breaker.Name())
	}
}
