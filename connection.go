package capsule

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/capsulecrm-go/capsule/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-Id"

// Gateway is the transport a Case persists itself through. Paths are
// relative to the API base URL and may carry a query string.
type Gateway interface {
	Get(ctx context.Context, path string) ([]byte, error)
	Post(ctx context.Context, path string, body []byte) ([]byte, error)
	Put(ctx context.Context, path string, body []byte) ([]byte, error)
	Delete(ctx context.Context, path string) (bool, error)
}

// Connection implements Gateway over HTTP against the CapsuleCRM API.
type Connection struct {
	baseURL    string
	apiToken   string
	userAgent  string
	httpClient *http.Client
	logger     *zap.Logger
}

// Verify that Connection implements Gateway.
var _ Gateway = (*Connection)(nil)

// Option customises a Connection
type Option func(*Connection)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Connection) {
		c.httpClient = client
	}
}

// WithLogger sets the logger requests are reported to
func WithLogger(logger *zap.Logger) Option {
	return func(c *Connection) {
		c.logger = logger
	}
}

// NewConnection builds a Connection from an explicit Config
func NewConnection(cfg Config, opts ...Option) (*Connection, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Connection{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiToken:   cfg.APIToken,
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if cfg.ServiceName != "" {
		c.logger = c.logger.With(zap.String("service", cfg.ServiceName))
	}
	return c, nil
}

// Get issues a GET and returns the response body
func (c *Connection) Get(ctx context.Context, path string) ([]byte, error) {
	out, _, err := c.do(ctx, http.MethodGet, path, nil)
	return out, err
}

// Post issues a POST with a JSON body and returns the response body. The
// API answers a create with 201 and an empty body, pointing at the new
// record through the Location header; in that case the body returned is
// {"id": N}, with N taken from the last segment of the Location.
func (c *Connection) Post(ctx context.Context, path string, body []byte) ([]byte, error) {
	if body == nil {
		return nil, errors.New("attempting to post a nil body")
	}
	out, header, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(out)) > 0 {
		return out, nil
	}
	loc := header.Get("Location")
	if loc == "" {
		return out, nil
	}
	id, err := idFromLocation(loc)
	if err != nil {
		return nil, errors.Wrapf(err, "POST %s", path)
	}
	return json.Marshal(map[string]models.ID{"id": id})
}

// Put issues a PUT with a JSON body and returns the response body
func (c *Connection) Put(ctx context.Context, path string, body []byte) ([]byte, error) {
	out, _, err := c.do(ctx, http.MethodPut, path, body)
	return out, err
}

// Delete issues a DELETE and reports whether the API accepted it
func (c *Connection) Delete(ctx context.Context, path string) (bool, error) {
	if _, _, err := c.do(ctx, http.MethodDelete, path, nil); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Connection) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, errors.Wrapf(err, "building %s request for %s", method, path)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set(requestIDHeader, uuid.New().String())
	if c.apiToken != "" {
		// CapsuleCRM takes the token as the basic auth user with a dummy password
		req.SetBasicAuth(c.apiToken, "x")
	}
	return req, nil
}

func (c *Connection) do(ctx context.Context, method, path string, body []byte) ([]byte, http.Header, error) {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, nil, err
	}
	requestID := req.Header.Get(requestIDHeader)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("capsule request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err))
		return nil, nil, errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	out, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "reading response to %s %s", method, path)
	}

	fields := []zap.Field{
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("duration", time.Since(start)),
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("capsule request rejected", fields...)
		return nil, nil, errorFromResponse(method, path, resp.StatusCode, out)
	}
	c.logger.Debug("capsule request", fields...)

	return out, resp.Header, nil
}

// idFromLocation reads the record id off the end of a Location header,
// e.g. https://api.capsulecrm.com/api/kase/42
func idFromLocation(loc string) (models.ID, error) {
	u, err := url.Parse(loc)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing location %q", loc)
	}
	segment := path.Base(strings.TrimRight(u.Path, "/"))
	n, err := strconv.ParseInt(segment, 10, 64)
	if err != nil {
		return 0, errors.Errorf("location %q does not end in an id", loc)
	}
	return models.ID(n), nil
}

func errorFromResponse(method, path string, status int, body []byte) error {
	apiErr := &APIError{
		Method:     method,
		Path:       path,
		StatusCode: status,
	}
	var remote models.Error
	if err := json.Unmarshal(body, &remote); err == nil && remote.Message != "" {
		apiErr.Message = remote.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}
