package billinglogix

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/billinglogix/billinglogix-go/observability"
)

// SpanName names the span wrapping each call.
const SpanName = "billinglogix.request"

// callObserver traces and meters one call from validation to settlement.
type callObserver struct {
	ctx     context.Context
	span    trace.Span
	metrics *observability.Metrics
	method  string
	start   time.Time
}

func (c *Client) observe(ctx context.Context, req *Request, requestID string) (context.Context, *callObserver) {
	method, path := "", ""
	if req != nil {
		method, path = strings.ToUpper(req.Method), req.Path
	}
	ctx, span := c.cfg.tracer.Start(ctx, SpanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(observability.AttrRequestID, requestID),
			attribute.String(observability.AttrAccount, c.cfg.account),
			attribute.String(observability.AttrHTTPMethod, method),
			attribute.String(observability.AttrURLPath, path),
		),
	)
	c.cfg.metrics.RecordRequestStart(ctx)
	return ctx, &callObserver{
		ctx:     ctx,
		span:    span,
		metrics: c.cfg.metrics,
		method:  method,
		start:   time.Now(),
	}
}

// finish ends the span and records the outcome. status is 0 when no
// response was received.
func (o *callObserver) finish(status int, err error) {
	if status > 0 {
		o.span.SetAttributes(attribute.Int(observability.AttrStatusCode, status))
	}
	outcome := outcomeOf(err)
	if err != nil {
		o.span.RecordError(err)
		o.span.SetStatus(codes.Error, err.Error())
		o.span.SetAttributes(attribute.String(observability.AttrErrorKind, outcome))
	}
	o.metrics.RecordRequestEnd(o.ctx, o.method, outcome, status, time.Since(o.start))
	o.span.End()
}

func outcomeOf(err error) string {
	if err == nil {
		return "success"
	}
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return "upstream"
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind.String()
	}
	return "unknown"
}
