package billinglogix

import (
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/billinglogix/billinglogix-go/auth"
	"github.com/billinglogix/billinglogix-go/logger"
	"github.com/billinglogix/billinglogix-go/validation"
	"github.com/billinglogix/billinglogix-go/version"
)

// APIVersion is the only API version the client speaks.
const APIVersion = "v1"

// Timeout bounds. A zero timeout selects DefaultTimeout.
const (
	DefaultTimeout = 10 * time.Second
	MinTimeout     = time.Second
	MaxTimeout     = 60 * time.Second
)

const baseURLFormat = "https://%s.billinglogix.com/api/%s"

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options configures a Client. A nil *Options selects the defaults.
type Options struct {
	// Version must be empty or "v1".
	Version string `json:"version" validate:"omitempty,eq=v1"`

	// Timeout is the default per-request timeout (default: 10s, range 1s-60s).
	Timeout time.Duration `json:"timeout" validate:"omitempty,min=1s,max=60s"`

	// Headers are sent with every request and override per-request headers
	// of the same name. Library headers override these.
	Headers map[string]string `json:"headers" validate:"omitempty,dive,keys,http_header_name,endkeys,http_header_value"`

	// Debug enables verbose diagnostic logging. It never changes results.
	Debug bool `json:"debug"`

	// Logger receives debug output. Defaults to a console logger on stderr.
	Logger *logger.Logger `json:"-" validate:"-"`

	// HTTPClient executes requests (default: a new *http.Client).
	HTTPClient Doer `json:"-" validate:"-"`

	// Cancellation selects how timeouts are enforced. CancelAuto picks
	// CancelHardAbort unless HTTPClient reports it cannot cancel.
	Cancellation CancelStrategy `json:"-" validate:"-"`

	// Signer produces request tokens (default: HS256 JWT, 30s lifetime).
	Signer auth.TokenGenerator `json:"-" validate:"-"`

	// TracerProvider and MeterProvider default to the otel globals.
	TracerProvider trace.TracerProvider `json:"-" validate:"-"`
	MeterProvider  metric.MeterProvider `json:"-" validate:"-"`
}

// credentialArgs carries the constructor key arguments through struct
// validation. Declaration order is the order failures are reported in.
type credentialArgs struct {
	Account   string `json:"account" validate:"required,blx_account"`
	AccessKey string `json:"access_key" validate:"required,blx_access_key"`
	SecretKey string `json:"secret_key" validate:"required,blx_secret_key"`
}

func validateCredentials(account, accessKey, secretKey string) error {
	err := validation.Validate(credentialArgs{
		Account:   account,
		AccessKey: accessKey,
		SecretKey: secretKey,
	})
	if err == nil {
		return nil
	}
	fe := err.(*validation.Error).First()
	switch fe.Field {
	case "account":
		return newAPIError(KindConfig, fmt.Sprintf("Missing or invalid account subdomain: %s", account), account)
	case "access_key":
		return newAPIError(KindConfig, fmt.Sprintf("Missing or invalid access key: %s", accessKey), accessKey)
	default:
		return newAPIError(KindConfig, fmt.Sprintf("Missing or invalid secret key: %s", secretKey), secretKey)
	}
}

func validateAccount(account string) error {
	err := validation.New().
		Required("account", account).
		Pattern("account", account, validation.AccountPattern).
		Validate()
	if err != nil {
		return newAPIError(KindConfig, fmt.Sprintf("Missing or invalid account subdomain: %s", account), account)
	}
	return nil
}

func (o *Options) validate() error {
	err := validation.Validate(*o)
	if err == nil {
		return nil
	}
	fe := err.(*validation.Error).First()
	switch fe.Tag {
	case "http_header_name":
		return newAPIError(KindConfig, fmt.Sprintf("Invalid request header key: %v", fe.Value), o.Headers)
	case "http_header_value":
		return newAPIError(KindConfig, fmt.Sprintf("Invalid request header value: %v", fe.Value), o.Headers)
	}
	switch fe.Field {
	case "version":
		return newAPIError(KindConfig, fmt.Sprintf("Unsupported API version: %v", o.Version), o.Version)
	case "timeout":
		return newAPIError(KindConfig, fmt.Sprintf("Unsupported request timeout: %v", o.Timeout), o.Timeout)
	default:
		return newAPIError(KindConfig, "Invalid client options: "+fe.Message, fe.Value)
	}
}

// defaultHeaders merges caller defaults with the library headers. Library
// headers win.
func defaultHeaders(custom map[string]string) http.Header {
	h := make(http.Header, len(custom)+3)
	for k, v := range custom {
		h.Set(k, v)
	}
	h.Set("User-Agent", version.UserAgent())
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	return h
}
