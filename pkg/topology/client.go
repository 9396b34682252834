package topology

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/topoview/pkg/buildinfo"
	"github.com/matzehuels/topoview/pkg/cache"
	"github.com/matzehuels/topoview/pkg/errors"
	"github.com/matzehuels/topoview/pkg/httputil"
	"github.com/matzehuels/topoview/pkg/observability"
	"github.com/matzehuels/topoview/pkg/scene"
)

// Service paths.
const (
	SceneGraphPath = "/api/v1/visualization/scene-graph"
	DocumentPath   = "/api/v1/dat/generate/vm"
	StatusPath     = "/api/v1/status"
	RefreshPath    = "/api/v1/vsphere/refresh"
)

// DefaultTimeout bounds a single HTTP exchange.
const DefaultTimeout = 30 * time.Second

// Options configures [NewClient].
type Options struct {
	BaseURL string
	Timeout time.Duration
	Headers map[string]string
	// Cache stores generated documents. Nil disables caching.
	Cache cache.Cache
	// DocumentTTL overrides cache.DocumentTTL.
	DocumentTTL time.Duration
	Keyer       cache.Keyer
	Logger      *log.Logger
}

// Client is the topology service client.
type Client struct {
	http    *http.Client
	base    *url.URL
	headers map[string]string
	cache   cache.Cache
	keyer   cache.Keyer
	docTTL  time.Duration
	logger  *log.Logger
}

// ServiceStatus reports the state of the service's inventory collector.
type ServiceStatus struct {
	LastCollection *time.Time `json:"last_collection_timestamp_utc"`
	LastStatus     string     `json:"last_collection_status"`
	LastMessage    string     `json:"last_collection_message"`
	Collecting     bool       `json:"is_currently_collecting"`
}

// NewClient validates the base URL and builds a client.
func NewClient(opts Options) (*Client, error) {
	if err := errors.ValidateURL(opts.BaseURL); err != nil {
		return nil, err
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid base URL")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	if opts.Keyer == nil {
		opts.Keyer = cache.NewDefaultKeyer()
	}
	if opts.DocumentTTL <= 0 {
		opts.DocumentTTL = cache.DocumentTTL
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Client{
		http:    &http.Client{Timeout: opts.Timeout},
		base:    base,
		headers: opts.Headers,
		cache:   opts.Cache,
		keyer:   opts.Keyer,
		docTTL:  opts.DocumentTTL,
		logger:  opts.Logger,
	}, nil
}

// BaseURL returns the service root the client was built with.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Fetch retrieves the scene graph for req. It is a single attempt.
// An answer whose nodes list is empty is returned as an empty graph, not as
// an error.
func (c *Client) Fetch(ctx context.Context, req scene.Request) (*scene.Graph, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body, err := c.post(ctx, SceneGraphPath, req)
	if err != nil {
		return nil, unwrapRetryable(err)
	}

	g, err := scene.Unmarshal(body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedPayload, err, "scene graph response is not valid JSON")
	}
	c.logger.Debug("fetched scene graph", "start", req.StartID, "depth", req.Depth, "nodes", len(g.Nodes), "edges", len(g.Edges))
	return g, nil
}

// GenerateDocument returns the architecture document of a VM. Results are
// cached for Options.DocumentTTL; refresh bypasses the cached copy.
// Transient failures (transport errors, 5xx) are retried with backoff.
func (c *Client) GenerateDocument(ctx context.Context, vmID string, refresh bool) (*scene.Document, error) {
	if err := errors.ValidateID(vmID); err != nil {
		return nil, err
	}
	key := c.keyer.DocumentKey(vmID)

	if !refresh {
		if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
			var doc scene.Document
			if json.Unmarshal(data, &doc) == nil {
				c.logger.Debug("document cache hit", "vm", vmID)
				return &doc, nil
			}
		}
	}

	var body []byte
	backoff := httputil.DefaultBackoff
	backoff.OnRetry = func(attempt int, err error, wait time.Duration) {
		c.logger.Warn("document request failed, retrying", "vm", vmID, "attempt", attempt, "wait", wait, "err", err)
	}
	err := backoff.Do(ctx, func() error {
		var err error
		body, err = c.post(ctx, DocumentPath, scene.DocumentRequest{VMID: vmID})
		return err
	})
	if err != nil {
		return nil, unwrapRetryable(err)
	}

	var doc scene.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedPayload, err, "document response is not valid JSON")
	}
	if err := c.cache.Set(ctx, key, body, c.docTTL); err != nil {
		c.logger.Warn("could not cache document", "vm", vmID, "err", err)
	}
	return &doc, nil
}

// Status returns the collector status.
func (c *Client) Status(ctx context.Context) (*ServiceStatus, error) {
	body, err := c.do(ctx, http.MethodGet, StatusPath, nil)
	if err != nil {
		return nil, unwrapRetryable(err)
	}
	var st ServiceStatus
	if err := json.Unmarshal(body, &st); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedPayload, err, "status response is not valid JSON")
	}
	return &st, nil
}

// Refresh asks the service to start a new inventory collection.
// A collection already in progress is reported as INVALID_STATE.
func (c *Client) Refresh(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, RefreshPath, nil)
	return unwrapRetryable(err)
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode request")
	}
	return c.do(ctx, http.MethodPost, path, data)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	u := c.base.JoinPath(path)

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, method, u.Host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, u.Host, path, err)
		return nil, &httputil.RetryableError{Err: transportError(ctx, err)}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, method, u.Host, path, resp.StatusCode, time.Since(start))

	data, err := io.ReadAll(io.LimitReader(resp.Body, httputil.MaxBodyBytes))
	if err != nil {
		return nil, &httputil.RetryableError{Err: transportError(ctx, err)}
	}
	if err := checkStatus(resp.StatusCode, resp.Header, data); err != nil {
		return nil, err
	}
	return data, nil
}

// transportError classifies a failed exchange as TIMEOUT or NETWORK_ERROR.
func transportError(ctx context.Context, err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
		return errors.Wrap(errors.ErrCodeTimeout, err, "topology service did not answer in time")
	}
	var ne interface{ Timeout() bool }
	if stderrors.As(err, &ne) && ne.Timeout() {
		return errors.Wrap(errors.ErrCodeTimeout, err, "topology service did not answer in time")
	}
	return errors.Wrap(errors.ErrCodeNetwork, err, "topology service unreachable")
}

func checkStatus(code int, h http.Header, body []byte) error {
	detail := serviceDetail(body)
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "%s", orDefault(detail, "not found"))
	case code == http.StatusConflict:
		return errors.New(errors.ErrCodeInvalidState, "%s", orDefault(detail, "conflict"))
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity:
		return errors.New(errors.ErrCodeInvalidInput, "%s", orDefault(detail, "request rejected"))
	case code >= 500 || code == http.StatusTooManyRequests:
		return &httputil.RetryableError{
			Err:   errors.New(errors.ErrCodeUpstream, "service error (status %d): %s", code, orDefault(detail, http.StatusText(code))),
			After: httputil.RetryAfter(h),
		}
	default:
		return errors.New(errors.ErrCodeUpstream, "unexpected status %d: %s", code, orDefault(detail, http.StatusText(code)))
	}
}

// serviceDetail extracts the "detail" field of an error body. Validation
// errors carry a list of objects there; their messages are joined.
func serviceDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(body, &payload) != nil || len(payload.Detail) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(payload.Detail, &s) == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if json.Unmarshal(payload.Detail, &items) == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// unwrapRetryable strips the retry marker so callers see the coded error.
func unwrapRetryable(err error) error {
	var re *httputil.RetryableError
	if stderrors.As(err, &re) {
		return re.Err
	}
	return err
}

func (s ServiceStatus) String() string {
	when := "never"
	if s.LastCollection != nil {
		when = s.LastCollection.Format(time.RFC3339)
	}
	return fmt.Sprintf("last collection %s (%s)", when, orDefault(s.LastStatus, "unknown"))
}
