package billinglogix

import (
	"context"
	"net/http"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/billinglogix/billinglogix-go/internal/testserver"
	"github.com/billinglogix/billinglogix-go/observability"
)

func spanAttr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestRequestSpans(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	defer tp.Shutdown(context.Background())

	srv := testserver.New(t, testSecretKey)
	srv.Handle("GET", "/tags", http.StatusOK, `[]`)
	c := newTestClient(t, srv, &Options{TracerProvider: tp})

	if _, err := c.Get(context.Background(), "/tags", nil, nil).Wait(); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, err := c.Get(context.Background(), "/", nil, nil).Wait(); err == nil {
		t.Fatal("expected validation error")
	}
	tp.ForceFlush(context.Background())

	spans := exp.GetSpans().Snapshots()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}

	var ok, failed sdktrace.ReadOnlySpan
	for _, s := range spans {
		if s.Status().Code == codes.Error {
			failed = s
		} else {
			ok = s
		}
	}
	if ok == nil || failed == nil {
		t.Fatal("expected one successful and one failed span")
	}
	if ok.Name() != SpanName {
		t.Errorf("unexpected span name %q", ok.Name())
	}
	if v, found := spanAttr(ok, observability.AttrStatusCode); !found || v.AsInt64() != 200 {
		t.Errorf("expected status 200 attribute, got %v", v)
	}
	if v, found := spanAttr(ok, observability.AttrRequestID); !found || v.AsString() == "" {
		t.Error("expected request id attribute")
	}
	if v, _ := spanAttr(failed, observability.AttrErrorKind); v.AsString() != "validation" {
		t.Errorf("expected validation error kind, got %q", v.AsString())
	}
}

func TestRequestMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	srv := testserver.New(t, testSecretKey)
	srv.Handle("GET", "/tags", http.StatusOK, `[]`)
	srv.Handle("GET", "/missing", http.StatusNotFound, `{}`)
	c := newTestClient(t, srv, &Options{MeterProvider: mp})

	c.Get(context.Background(), "/tags", nil, nil).Wait()
	c.Get(context.Background(), "/missing", nil, nil).Wait()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	outcomes := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "billinglogix.requests" {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				v, _ := dp.Attributes.Value(attribute.Key(observability.AttrOutcome))
				outcomes[v.AsString()] += dp.Value
			}
		}
	}
	if outcomes["success"] != 1 || outcomes["upstream"] != 1 {
		t.Errorf("unexpected outcomes %v", outcomes)
	}
}

func TestOutcomeOf(t *testing.T) {
	if outcomeOf(nil) != "success" {
		t.Error("nil error is success")
	}
	if outcomeOf(&UpstreamError{StatusCode: 500}) != "upstream" {
		t.Error("expected upstream")
	}
	if outcomeOf(newAPIError(KindAuth, "No Authentication Data", nil)) != "auth" {
		t.Error("expected auth")
	}
}
