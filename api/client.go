package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBaseURL is the production auth service.
const DefaultBaseURL = "https://scoring.ezly.site/v1"

// Endpoint paths relative to the base URL.
const (
	PathSignup      = "/users/signup"
	PathLogin       = "/users/login"
	PathEditProfile = "/users/editProfile"
)

// Request headers.
const (
	HeaderToken     = "token"
	HeaderUserID    = "id"
	HeaderRequestID = "X-Request-ID"
)

const maxResponseBytes = 1 << 20

// Config configures a [Client].
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string

	// HTTPClient overrides the transport. Timeout is ignored when set.
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client talks to the auth service. It is safe for concurrent use.
type Client struct {
	baseURL   string
	http      *http.Client
	userAgent string
	logger    *zap.Logger

	mu     sync.RWMutex
	token  string
	userID string
}

// New validates cfg and returns a client with no credentials attached.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid auth service base url %q", cfg.BaseURL)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:   base,
		http:      hc,
		userAgent: cfg.UserAgent,
		logger:    logger.Named("api"),
	}, nil
}

// BaseURL returns the normalized service root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Attach sets the default credentials sent with every request.
func (c *Client) Attach(token, userID string) {
	c.mu.Lock()
	c.token = token
	c.userID = userID
	c.mu.Unlock()
}

// Detach removes the default credentials.
func (c *Client) Detach() {
	c.mu.Lock()
	c.token = ""
	c.userID = ""
	c.mu.Unlock()
}

// Credentials returns the attached token and user id.
func (c *Client) Credentials() (token, userID string, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token, c.userID, c.token != ""
}

// Signup creates an account. Any 2xx status is returned as a result; callers
// decide what counts as created.
func (c *Client) Signup(ctx context.Context, email, password string) (*SignupResult, error) {
	status, _, err := c.post(ctx, PathSignup, Credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return &SignupResult{StatusCode: status}, nil
}

// Login exchanges credentials for a session payload.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	_, body, err := c.post(ctx, PathLogin, Credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	var out LoginResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: login: %v", ErrMalformedResponse, err)
	}
	return &out, nil
}

// EditProfile sends the set fields of req. The attached credentials
// identify the account.
func (c *Client) EditProfile(ctx context.Context, req EditProfileRequest) (*EditProfileResponse, error) {
	status, body, err := c.post(ctx, PathEditProfile, req)
	if err != nil {
		return nil, err
	}
	return &EditProfileResponse{StatusCode: status, Body: json.RawMessage(body)}, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (int, []byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("encode %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return 0, nil, fmt.Errorf("build %s request: %w", path, err)
	}

	requestID := requestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.mu.RLock()
	token, userID := c.token, c.userID
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set(HeaderToken, token)
	}
	if userID != "" {
		req.Header.Set(HeaderUserID, userID)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("auth service request failed",
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err),
		)
		return 0, nil, &TransportError{Path: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, &TransportError{Path: path, Err: err}
	}

	c.logger.Debug("auth service request completed",
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, body, &ServiceError{
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    serviceMessage(body),
		}
	}
	return resp.StatusCode, body, nil
}

func serviceMessage(body []byte) string {
	if len(bytes.TrimSpace(body)) == 0 {
		return ""
	}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return strings.TrimSpace(string(body))
		}
		return ""
	}
	return eb.text()
}
