package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewProber_InvalidSchedule(t *testing.T) {
	_, err := NewProber("upstream", "not a schedule", time.Second, func(ctx context.Context) error { return nil }, nil)
	if err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

func TestProber_RunNow(t *testing.T) {
	var fail atomic.Bool
	var reported atomic.Int32

	prober, err := NewProber("upstream", "@every 1h", time.Second, func(ctx context.Context) error {
		if fail.Load() {
			return errors.New("upstream returned 503")
		}
		return nil
	}, func(err error) { reported.Add(1) })
	if err != nil {
		t.Fatalf("NewProber() error = %v", err)
	}

	if err := prober.Check(context.Background()); err != nil {
		t.Errorf("Check() before first run = %v, want nil", err)
	}

	if err := prober.RunNow(context.Background()); err != nil {
		t.Fatalf("RunNow() error = %v", err)
	}
	if last := prober.Last(); last.Err != nil || last.CheckedAt.IsZero() {
		t.Errorf("Last() = %+v, want success with timestamp", last)
	}

	fail.Store(true)
	if err := prober.RunNow(context.Background()); err == nil {
		t.Fatal("RunNow() should return the probe error")
	}
	if err := prober.Check(context.Background()); err == nil {
		t.Error("Check() should report the cached failure")
	}

	if got := reported.Load(); got != 2 {
		t.Errorf("onResult called %d times, want 2", got)
	}
}

func TestProber_Timeout(t *testing.T) {
	prober, err := NewProber("upstream", "@every 1h", 10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, nil)
	if err != nil {
		t.Fatalf("NewProber() error = %v", err)
	}

	if err := prober.RunNow(context.Background()); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("RunNow() error = %v, want deadline exceeded", err)
	}
}

func TestProber_StartRunsImmediately(t *testing.T) {
	var runs atomic.Int32
	prober, err := NewProber("upstream", "@every 1h", time.Second, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("NewProber() error = %v", err)
	}

	prober.Start(context.Background())
	prober.Stop()

	if got := runs.Load(); got != 1 {
		t.Errorf("probe ran %d times, want 1", got)
	}
}

func TestProber_RegisteredWithChecker(t *testing.T) {
	prober, err := NewProber("upstream", "@every 1h", time.Second, func(ctx context.Context) error {
		return errors.New("unreachable")
	}, nil)
	if err != nil {
		t.Fatalf("NewProber() error = %v", err)
	}
	_ = prober.RunNow(context.Background())

	checker := New(time.Second)
	checker.RegisterCheck("upstream", prober.Check)

	if status := checker.CheckReadiness(context.Background()); status.Status != StatusDegraded {
		t.Errorf("status = %q, want degraded", status.Status)
	}
}
