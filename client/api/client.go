// Package api is the player's HTTP client for the EcoAware backend. It keeps
// the session cookie the server hands out on login and replays it on every
// request.
package api

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"
)

const (
	DefaultCookieName = "token"
	DefaultTimeout    = 10 * time.Second
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
	// Fields holds per-field validation failures keyed by json name.
	Fields map[string]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0 when err did not
// come from the server.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithCookieName(name string) Option {
	return func(c *Client) { c.cookieName = name }
}

// Client is safe for concurrent use.
type Client struct {
	baseURL    string
	cookieName string
	timeout    time.Duration

	mu    sync.RWMutex
	token string
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		cookieName: DefaultCookieName,
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) LoggedIn() bool {
	return c.Token() != ""
}

// do sends body as JSON (when non-nil) and decodes a successful answer into
// out (when non-nil).
func (c *Client) do(method, path string, body, out interface{}) error {
	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return errors.Wrapf(err, "%s %s", method, path)
	}

	a.JSONEncoder(sonic.Marshal).JSONDecoder(sonic.Unmarshal)
	a.Timeout(c.timeout)
	if token := c.Token(); token != "" {
		a.Cookie(c.cookieName, token)
	}
	if body != nil {
		a.JSON(body)
	}

	resp := fiber.AcquireResponse()
	defer fiber.ReleaseResponse(resp)
	a.SetResponse(resp)

	// Bytes releases the agent.
	status, raw, errs := a.Bytes()
	if len(errs) > 0 {
		return errors.Wrapf(errs[0], "%s %s", method, path)
	}
	c.captureCookie(resp)

	if status >= fiber.StatusBadRequest {
		return decodeError(status, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(raw, out); err != nil {
		return errors.Wrapf(err, "decode %s %s", method, path)
	}
	return nil
}

// captureCookie follows Set-Cookie for the session cookie. Logout answers
// with an empty value, which drops the token.
func (c *Client) captureCookie(resp *fiber.Response) {
	cookie := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(cookie)

	cookie.SetKey(c.cookieName)
	if !resp.Header.Cookie(cookie) {
		return
	}
	c.SetToken(string(cookie.Value()))
}

type errorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
}

func decodeError(status int, raw []byte) error {
	apiErr := &APIError{Status: status}
	var body errorBody
	if err := sonic.Unmarshal(raw, &body); err == nil {
		apiErr.Message = body.Message
		if apiErr.Message == "" {
			apiErr.Message = body.Error
		}
		apiErr.Fields = body.Details
	}
	return apiErr
}
