package billinglogix

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/billinglogix/billinglogix-go/auth"
	"github.com/billinglogix/billinglogix-go/auth/jwt"
	"github.com/billinglogix/billinglogix-go/logger"
	"github.com/billinglogix/billinglogix-go/observability"
)

// Component is the logger component name used by the client.
const Component = "billinglogix"

// clientConfig is built once by New and never mutated.
type clientConfig struct {
	account string
	creds   auth.Credentials
	signer  auth.TokenGenerator
	version string
	baseURL string
	timeout time.Duration
	headers http.Header
	debug   bool
	log     *logger.Logger
	doer    Doer
	cancel  CancelStrategy
	tracer  trace.Tracer
	metrics *observability.Metrics
}

// Client is a BillingLogix API client. It is safe for concurrent use.
type Client struct {
	cfg *clientConfig
}

// New validates the account and keys and returns a client that signs every
// request with them. Invalid arguments yield an *APIError of kind
// KindConfig.
func New(account, accessKey, secretKey string, opts *Options) (*Client, error) {
	if err := validateCredentials(account, accessKey, secretKey); err != nil {
		return nil, err
	}
	return newClient(account, auth.StaticCredentials{AccessKey: accessKey, SecretKey: secretKey}, opts)
}

// NewWithCredentials returns a client that resolves its keys from creds on
// every request. A nil creds makes every request fail with KindAuth.
func NewWithCredentials(account string, creds auth.Credentials, opts *Options) (*Client, error) {
	if err := validateAccount(account); err != nil {
		return nil, err
	}
	return newClient(account, creds, opts)
}

func newClient(account string, creds auth.Credentials, opts *Options) (*Client, error) {
	if opts == nil {
		opts = &Options{}
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	cfg := &clientConfig{
		account: account,
		creds:   creds,
		signer:  opts.Signer,
		version: APIVersion,
		baseURL: fmt.Sprintf(baseURLFormat, account, APIVersion),
		timeout: opts.Timeout,
		headers: defaultHeaders(opts.Headers),
		debug:   opts.Debug,
		doer:    opts.HTTPClient,
		tracer:  observability.Tracer(opts.TracerProvider),
	}
	if cfg.timeout == 0 {
		cfg.timeout = DefaultTimeout
	}
	if cfg.doer == nil {
		cfg.doer = &http.Client{}
	}
	cfg.cancel = resolveCancelStrategy(opts.Cancellation, cfg.doer)

	if cfg.signer == nil {
		svc, err := jwt.NewService(&jwt.Config{})
		if err != nil {
			return nil, newAPIError(KindConfig, "Unable to create request signer", err)
		}
		cfg.signer = svc
	}

	metrics, err := observability.NewMetrics(observability.Meter(opts.MeterProvider))
	if err != nil {
		return nil, newAPIError(KindConfig, "Unable to create client metrics", err)
	}
	cfg.metrics = metrics

	switch {
	case !opts.Debug:
		cfg.log = logger.Nop()
	case opts.Logger != nil:
		cfg.log = opts.Logger.WithComponent(Component)
	default:
		cfg.log = logger.New(&logger.Config{Level: "debug", Format: logger.FormatConsole, Output: "stderr"}, Component)
	}
	cfg.log.Debug("client configured", logger.Fields(
		"base_url", cfg.baseURL,
		"timeout_ms", cfg.timeout.Milliseconds(),
		logger.FieldMode, cfg.cancel.String(),
	))

	return &Client{cfg: cfg}, nil
}

// BaseURL returns https://{account}.billinglogix.com/api/v1.
func (c *Client) BaseURL() string {
	return c.cfg.baseURL
}

// Timeout returns the default per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.cfg.timeout
}

// Request executes req. With a nil done it returns a Future; otherwise it
// returns nil and calls done exactly once, on another goroutine, with the
// same outcome the Future would have carried.
func (c *Client) Request(ctx context.Context, req *Request, done Callback) *Future {
	f := c.execute(ctx, req)
	if done != nil {
		c.cfg.log.Debug("delivering through callback", logger.Fields(logger.FieldMode, "callback"))
		f.Then(done)
		return nil
	}
	return f
}

// Do executes req and blocks until it settles.
func (c *Client) Do(ctx context.Context, req *Request) (any, error) {
	return c.Request(ctx, req, nil).Wait()
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, opts *RequestOptions, done Callback) *Future {
	return c.Request(ctx, opts.request(http.MethodGet, path, nil), done)
}

// Post issues a POST request with body.
func (c *Client) Post(ctx context.Context, path string, body any, opts *RequestOptions, done Callback) *Future {
	return c.Request(ctx, opts.request(http.MethodPost, path, body), done)
}

// Put issues a PUT request with body.
func (c *Client) Put(ctx context.Context, path string, body any, opts *RequestOptions, done Callback) *Future {
	return c.Request(ctx, opts.request(http.MethodPut, path, body), done)
}

// Patch issues a PATCH request with body.
func (c *Client) Patch(ctx context.Context, path string, body any, opts *RequestOptions, done Callback) *Future {
	return c.Request(ctx, opts.request(http.MethodPatch, path, body), done)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, opts *RequestOptions, done Callback) *Future {
	return c.Request(ctx, opts.request(http.MethodDelete, path, nil), done)
}
