package billinglogix

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/billinglogix/billinglogix-go/auth"
	"github.com/billinglogix/billinglogix-go/logger"
)

// execute runs the request pipeline and returns a future that settles
// exactly once. Validation and signing run before execute returns; the
// exchange itself runs on its own goroutine.
func (c *Client) execute(ctx context.Context, req *Request) *Future {
	f := newFuture()
	requestID := uuid.NewString()
	log := c.cfg.log.WithFields(logger.Fields(logger.FieldRequestID, requestID))

	ctx, obs := c.observe(ctx, req, requestID)

	httpReq, timeout, err := c.prepare(ctx, req, log)
	if err != nil {
		log.Debug("request rejected before dispatch", logger.ErrorFields("prepare", err))
		obs.finish(0, err)
		f.settle(nil, err)
		return f
	}

	go c.dispatch(ctx, httpReq, timeout, f, obs, log)
	return f
}

// prepare validates req and builds the signed HTTP request. Panics are
// reported as KindUnexpected.
func (c *Client) prepare(ctx context.Context, req *Request, log *logger.Logger) (httpReq *http.Request, timeout time.Duration, err error) {
	defer func() {
		if r := recover(); r != nil {
			httpReq = nil
			err = newAPIError(KindUnexpected, "Unexpected Error", fmt.Errorf("panic: %v", r))
		}
	}()

	if err := validateRequest(req); err != nil {
		return nil, 0, err
	}
	method := strings.ToUpper(req.Method)
	log.Debug("request options valid", logger.Fields(
		logger.FieldMethod, method,
		logger.FieldPath, req.Path,
		logger.FieldQuery, req.Query,
	))

	token, err := c.sign(ctx)
	if err != nil {
		return nil, 0, err
	}

	body, err := encodeBody(req.Body)
	if err != nil {
		return nil, 0, newAPIError(KindUnexpected, "Unexpected Error", err)
	}

	u := buildURL(c.cfg.baseURL, req.Path, req.Query)
	httpReq, err = http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, 0, newAPIError(KindUnexpected, "Unexpected Error", err)
	}
	httpReq.Header = mergeHeaders(cleanHeaders(req.Headers, log), c.cfg.headers)
	httpReq.Header.Set("Authorization", "Bearer "+token)

	timeout = c.cfg.timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	log.Debug("request prepared", logger.Fields("url", u, "timeout_ms", timeout.Milliseconds()))
	return httpReq, timeout, nil
}

// sign resolves credentials and produces a fresh bearer token.
func (c *Client) sign(ctx context.Context) (string, error) {
	var keys auth.Keys
	if c.cfg.creds != nil {
		k, err := c.cfg.creds.Retrieve(ctx)
		if err != nil {
			return "", newAPIError(KindAuth, "No Authentication Data", err)
		}
		keys = k
	}
	token, err := c.cfg.signer.GenerateToken(keys)
	if errors.Is(err, auth.ErrNoCredentials) {
		return "", newAPIError(KindAuth, "No Authentication Data", nil)
	}
	if err != nil {
		return "", newAPIError(KindAuth, "Error signing request", err)
	}
	return token, nil
}

// dispatch performs the exchange and settles f. Telemetry is recorded
// before f settles.
func (c *Client) dispatch(ctx context.Context, httpReq *http.Request, timeout time.Duration, f *Future, obs *callObserver, log *logger.Logger) {
	status, result, err := c.exchange(ctx, httpReq, timeout, log)
	obs.finish(status, err)
	if err != nil {
		log.Debug("request failed", logger.MergeWithDuration(
			logger.Fields(logger.FieldStatus, status, logger.FieldError, err.Error()), time.Since(obs.start)))
		f.settle(nil, err)
		return
	}
	log.Debug("response success", logger.MergeWithDuration(logger.Fields(logger.FieldStatus, status), time.Since(obs.start)))
	f.settle(result, nil)
}

// exchange arms the timeout and runs one round trip. The timer is released
// on every exit path.
func (c *Client) exchange(ctx context.Context, httpReq *http.Request, timeout time.Duration, log *logger.Logger) (status int, result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			status, result = 0, nil
			err = newAPIError(KindUnexpected, "Unexpected Error", fmt.Errorf("panic: %v", r))
		}
	}()

	ctx, doer, cancel := c.cfg.cancel.arm(ctx, c.cfg.doer, timeout)
	defer cancel()
	if c.cfg.cancel == CancelAdvisory {
		log.Debug("request cancellation unsupported, timeout passed to transport",
			logger.Fields(logger.FieldMode, c.cfg.cancel.String(), "timeout_ms", timeout.Milliseconds()))
	}
	return c.roundTrip(doer, httpReq.WithContext(ctx), log)
}

// roundTrip sends httpReq and interprets the response.
func (c *Client) roundTrip(doer Doer, httpReq *http.Request, log *logger.Logger) (int, any, error) {
	resp, err := doer.Do(httpReq)
	if err != nil {
		return 0, nil, newAPIError(KindTransport, "Request Failure", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, newAPIError(KindTransport, "Request Failure", err)
	}
	log.Debug("response received", logger.Fields(logger.FieldStatus, resp.StatusCode, "bytes", len(raw)))

	value, err := decodeBody(raw)
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err != nil {
			return resp.StatusCode, nil, newAPIError(KindParse, "Error parsing response data", err)
		}
		return resp.StatusCode, value, nil
	}
	if err != nil {
		return resp.StatusCode, nil, newAPIError(KindParse, "Error parsing request failure", err)
	}
	return resp.StatusCode, nil, &UpstreamError{StatusCode: resp.StatusCode, Data: value}
}
