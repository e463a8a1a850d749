package transport

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
	"time"
	"unicode/utf8"

	"github.com/danmuck/callwire/internal/observability"
	"github.com/danmuck/callwire/internal/protocol"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// CallPath is appended to the configured base URL.
const CallPath = "/Call"

// DefaultMaxBodyBytes bounds how much of a response body is read.
const DefaultMaxBodyBytes = 8 << 20

// maxLoggedBody caps the body attached to the failure log event.
const maxLoggedBody = 4 << 10

// Doer is the subset of *http.Client the transport depends on.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Config binds a Client to one remote system.
type Config struct {
	BaseURL string
	Mode    Mode
	Timeout time.Duration
	// MaxBodyBytes is the largest response body accepted. Zero means unlimited.
	MaxBodyBytes int64
}

// DefaultConfig returns defaults for everything but BaseURL.
func DefaultConfig() Config {
	return Config{
		Mode:         ModeWrapped,
		Timeout:      30 * time.Second,
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
}

type Option func(*Client)

// WithDoer replaces the default *http.Client.
func WithDoer(d Doer) Option {
	return func(c *Client) { c.doer = d }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// Client sends Call envelopes. It holds no per-call state and is safe for
// concurrent use.
type Client struct {
	endpoint string
	mode     Mode
	maxBody  int64
	doer     Doer
	logger   zerolog.Logger
}

func New(cfg Config, opts ...Option) (*Client, error) {
	endpoint, err := callEndpoint(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.Mode != ModeWrapped && cfg.Mode != ModeRaw {
		return nil, fmt.Errorf("transport: unsupported mode %s", cfg.Mode)
	}
	if cfg.MaxBodyBytes < 0 {
		return nil, fmt.Errorf("transport: negative max body size %d", cfg.MaxBodyBytes)
	}
	c := &Client{
		endpoint: endpoint,
		mode:     cfg.Mode,
		maxBody:  cfg.MaxBodyBytes,
		doer:     &http.Client{Timeout: cfg.Timeout},
		logger:   log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Endpoint() string { return c.endpoint }

func (c *Client) Mode() Mode { return c.mode }

// Call encodes op/token/params and sends the envelope.
func (c *Client) Call(ctx context.Context, op int32, token string, params ...string) (*Result, error) {
	payload, err := protocol.EncodeChecked(op, token, params...)
	if err != nil {
		return nil, err
	}
	return c.send(ctx, op, payload)
}

// Send posts an already encoded envelope.
func (c *Client) Send(ctx context.Context, payload []byte) (*Result, error) {
	op := int32(0)
	if env, err := protocol.Decode(payload); err == nil {
		op = env.OpCode
	}
	return c.send(ctx, op, payload)
}

func (c *Client) send(ctx context.Context, op int32, payload []byte) (*Result, error) {
	start := time.Now()
	res, err := c.roundTrip(ctx, payload)
	outcome := "ok"
	if err != nil {
		var ce *CallError
		if errors.As(err, &ce) {
			outcome = ce.Kind.String()
			c.logger.Warn().
				Int32("op", op).
				Str("mode", c.mode.String()).
				Int("status", ce.Status).
				Str("kind", ce.Kind.String()).
				Str("body", clipBody(ce.Body)).
				Err(ce.Err).
				Msg("call failed")
		} else {
			outcome = "error"
			if errors.Is(err, ErrResponseTooLarge) {
				outcome = "too_large"
			}
			c.logger.Warn().
				Int32("op", op).
				Str("mode", c.mode.String()).
				Err(err).
				Msg("call failed")
		}
	}
	observability.RecordCall(op, c.mode.String(), outcome, time.Since(start))
	return res, err
}

func (c *Client) roundTrip(ctx context.Context, payload []byte) (*Result, error) {
	body, err := c.encodeBody(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", c.mode.contentType())
	req.Header.Set("Accept", contentTypeJSON)

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, failure(0, "", err)
	}
	defer resp.Body.Close()

	raw, err := c.readBody(resp.Body)
	if err != nil {
		if errors.Is(err, ErrResponseTooLarge) {
			return nil, fmt.Errorf("%w: status %d", err, resp.StatusCode)
		}
		return nil, failure(resp.StatusCode, "", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, failure(resp.StatusCode, string(raw), nil)
	}
	return success(resp.StatusCode, raw)
}

// readBody reads at most maxBody bytes. One extra byte is requested so an
// oversized body is reported instead of being cut to a shorter document.
func (c *Client) readBody(r io.Reader) ([]byte, error) {
	if c.maxBody == 0 {
		return io.ReadAll(r)
	}
	raw, err := io.ReadAll(io.LimitReader(r, c.maxBody+1))
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > c.maxBody {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrResponseTooLarge, c.maxBody)
	}
	return raw, nil
}

func clipBody(body string) string {
	if len(body) <= maxLoggedBody {
		return body
	}
	cut := maxLoggedBody
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return fmt.Sprintf("%s...(%d bytes truncated)", body[:cut], len(body)-cut)
}

type wrappedBody struct {
	Contents []int `json:"Contents"`
}

func (c *Client) encodeBody(payload []byte) ([]byte, error) {
	if c.mode == ModeRaw {
		return payload, nil
	}
	contents := make([]int, len(payload))
	for i, b := range payload {
		contents[i] = int(b)
	}
	return json.Marshal(wrappedBody{Contents: contents})
}

func callEndpoint(base string) (string, error) {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidBaseURL)
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: scheme %q", ErrInvalidBaseURL, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidBaseURL)
	}
	return base + CallPath, nil
}
