package transport

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Options are per-request settings for Send.
type Options struct {
	Method  string
	Body    any
	Headers map[string]string
	// Quiet suppresses error logging for calls that are expected to fail, e.g. the
	// current-user probe of a guest.
	Quiet bool
	// OmitCredentials drops the bearer token for public endpoints.
	OmitCredentials bool
}

// Response is a decoded backend reply. Body is nil (204 or empty), the JSON value, or the
// raw text when the body was not JSON. Treat Body as unvalidated; use Decode for DTOs.
type Response struct {
	Status int
	Body   any
	Raw    []byte
}

// NewResponse decodes raw the way the gateway does.
func NewResponse(status int, raw []byte) *Response {
	res := &Response{Status: status, Raw: raw}
	if status == fiber.StatusNoContent || len(strings.TrimSpace(string(raw))) == 0 {
		res.Raw = nil
		return res
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		res.Body = string(raw)
		return res
	}
	res.Body = v
	return res
}

// Sender is implemented by Gateway; resources depend on it.
type Sender interface {
	Send(ctx context.Context, endpoint string, opts Options) (*Response, error)
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, endpoint string, opts Options) (*Response, error)

func (f SenderFunc) Send(ctx context.Context, endpoint string, opts Options) (*Response, error) {
	return f(ctx, endpoint, opts)
}

// Gateway is the one place outbound calls to the recommendation backend are made.
type Gateway struct {
	baseURL string
	token   string
	timeout time.Duration
	log     *slog.Logger
}

func NewGateway(baseURL string, timeout time.Duration, log *slog.Logger) *Gateway {
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		log:     log,
	}
}

// WithToken returns a copy of g that authenticates as the bearer of token.
func (g *Gateway) WithToken(token string) *Gateway {
	cp := *g
	cp.token = token
	return &cp
}

// BaseURL is the backend root every endpoint is appended to.
func (g *Gateway) BaseURL() string {
	return g.baseURL
}

func (g *Gateway) Send(ctx context.Context, endpoint string, opts Options) (*Response, error) {
	method := opts.Method
	if method == "" {
		method = fiber.MethodGet
	}

	res, err := g.do(ctx, method, endpoint, opts)
	if err != nil && !opts.Quiet {
		g.log.Warn("backend call failed",
			"method", method,
			"endpoint", endpoint,
			"status", StatusOf(err),
			"error", err.Error())
	}
	return res, err
}

func (g *Gateway) do(ctx context.Context, method, endpoint string, opts Options) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, unreachable(err)
	}

	var payload []byte
	if opts.Body != nil {
		b, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, &Error{Message: "encode request body: " + err.Error(), Cause: err}
		}
		payload = b
	}

	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(g.baseURL + endpoint)

	a.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if g.token != "" && !opts.OmitCredentials {
		a.Set(fiber.HeaderAuthorization, "Bearer "+g.token)
	}
	for k, v := range opts.Headers {
		a.Set(k, v)
	}
	if payload != nil {
		a.Body(payload)
	}
	if t := g.timeoutFor(ctx); t > 0 {
		a.Timeout(t)
	}

	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return nil, unreachable(err)
	}

	// Bytes releases the agent.
	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return nil, unreachable(errs[0])
	}

	res := NewResponse(code, body)
	if code < 200 || code > 299 {
		return nil, protocolError(code, res.Body)
	}
	return res, nil
}

func (g *Gateway) timeoutFor(ctx context.Context) time.Duration {
	t := g.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); t <= 0 || left < t {
			t = left
		}
	}
	if t < 0 {
		t = time.Millisecond
	}
	return t
}
