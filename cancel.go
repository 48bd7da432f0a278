package billinglogix

import (
	"context"
	"net/http"
	"time"
)

// CancelStrategy selects how the effective timeout is enforced.
type CancelStrategy int

const (
	// CancelAuto resolves to CancelHardAbort, or CancelAdvisory when the
	// HTTP client implements CancellationReporter and reports false.
	CancelAuto CancelStrategy = iota
	// CancelHardAbort arms a context deadline that aborts the in-flight
	// request.
	CancelHardAbort
	// CancelAdvisory arms no local timer and hands the timeout to the
	// transport as a best-effort cue.
	CancelAdvisory
)

// String returns the strategy name.
func (s CancelStrategy) String() string {
	switch s {
	case CancelAuto:
		return "auto"
	case CancelHardAbort:
		return "hard_abort"
	case CancelAdvisory:
		return "advisory"
	default:
		return "unknown"
	}
}

// CancellationReporter is implemented by HTTP clients that know whether
// they honour request context cancellation.
type CancellationReporter interface {
	SupportsCancellation() bool
}

// resolveCancelStrategy is evaluated once, at construction.
func resolveCancelStrategy(s CancelStrategy, doer Doer) CancelStrategy {
	if s != CancelAuto {
		return s
	}
	if r, ok := doer.(CancellationReporter); ok && !r.SupportsCancellation() {
		return CancelAdvisory
	}
	return CancelHardAbort
}

// arm prepares ctx and doer for one dispatch. The returned cancel func must
// run on every exit path; it is a no-op under CancelAdvisory.
func (s CancelStrategy) arm(ctx context.Context, doer Doer, timeout time.Duration) (context.Context, Doer, context.CancelFunc) {
	if s == CancelAdvisory {
		if hc, ok := doer.(*http.Client); ok {
			clone := *hc
			clone.Timeout = timeout
			return ctx, &clone, func() {}
		}
		return ctx, doer, func() {}
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, doer, cancel
}
