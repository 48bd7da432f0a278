package billinglogix

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFutureSettlesOnce(t *testing.T) {
	f := newFuture()
	if !f.settle("first", nil) {
		t.Fatal("first settle should win")
	}
	if f.settle(nil, errors.New("late")) {
		t.Error("second settle should be a no-op")
	}
	result, err := f.Wait()
	if result != "first" || err != nil {
		t.Errorf("unexpected outcome %v, %v", result, err)
	}
	select {
	case <-f.Done():
	default:
		t.Error("Done should be closed")
	}
}

func TestFutureAwaitContext(t *testing.T) {
	f := newFuture()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := f.Await(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	// giving up does not settle
	if !f.settle(1, nil) {
		t.Error("future should still be pending")
	}
	if v, err := f.Await(context.Background()); v != 1 || err != nil {
		t.Errorf("unexpected outcome %v, %v", v, err)
	}
}

func TestFutureThen(t *testing.T) {
	type outcome struct {
		err    error
		result any
	}

	f := newFuture()
	got := make(chan outcome, 1)
	f.Then(func(err error, result any) { got <- outcome{err, result} })
	f.settle(map[string]any{"ok": true}, nil)

	select {
	case o := <-got:
		if o.err != nil || o.result.(map[string]any)["ok"] != true {
			t.Errorf("unexpected outcome %+v", o)
		}
	case <-time.After(time.Second):
		t.Fatal("callback not invoked")
	}

	failed := newFuture()
	failed.settle("ignored", errors.New("boom"))
	failed.Then(func(err error, result any) { got <- outcome{err, result} })
	o := <-got
	if o.err == nil || o.result != nil {
		t.Errorf("expected (err, nil), got %+v", o)
	}
}
