package billinglogix

import (
	"context"
	"sync"
)

// Callback receives the outcome of a request: (err, nil) on failure or
// (nil, result) on success.
type Callback func(err error, result any)

// Future is the pending result of a request. It settles exactly once.
type Future struct {
	once   sync.Once
	done   chan struct{}
	result any
	err    error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// settle records the outcome. Calls after the first are no-ops and report
// false.
func (f *Future) settle(result any, err error) bool {
	settled := false
	f.once.Do(func() {
		f.result, f.err = result, err
		close(f.done)
		settled = true
	})
	return settled
}

// Done is closed once the future has settled.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future settles.
func (f *Future) Wait() (any, error) {
	<-f.done
	return f.result, f.err
}

// Await blocks until the future settles or ctx is done. Giving up on ctx
// does not settle the future.
func (f *Future) Await(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Then invokes cb on a new goroutine once the future settles.
func (f *Future) Then(cb Callback) {
	go func() {
		<-f.done
		if f.err != nil {
			cb(f.err, nil)
			return
		}
		cb(nil, f.result)
	}()
}
