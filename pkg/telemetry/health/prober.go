package health

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ProbeResult is the outcome of the most recent scheduled probe.
type ProbeResult struct {
	// Err is nil when the probe succeeded.
	Err error

	// CheckedAt is when the probe finished. Zero if it never ran.
	CheckedAt time.Time

	// Duration is how long the probe took.
	Duration time.Duration
}

// Prober runs a check on a cron schedule and caches the result, so the
// readiness endpoint does not call the upstream on every request.
type Prober struct {
	name     string
	probe    CheckFunc
	timeout  time.Duration
	onResult func(err error)
	logger   *slog.Logger

	cron *cron.Cron

	mu   sync.RWMutex
	last ProbeResult
}

// NewProber creates a prober that runs probe on schedule. The schedule
// accepts standard five-field cron expressions and descriptors such as
// "@every 1m". onResult, if set, is called after every run.
func NewProber(name, schedule string, timeout time.Duration, probe CheckFunc, onResult func(err error)) (*Prober, error) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	p := &Prober{
		name:     name,
		probe:    probe,
		timeout:  timeout,
		onResult: onResult,
		logger:   slog.Default().With("component", "health.prober", "probe", name),
		cron:     cron.New(),
	}

	if _, err := p.cron.AddFunc(schedule, func() {
		_ = p.RunNow(context.Background())
	}); err != nil {
		return nil, fmt.Errorf("invalid probe schedule %q: %w", schedule, err)
	}

	return p, nil
}

// Start runs the probe once and then starts the schedule.
func (p *Prober) Start(ctx context.Context) {
	_ = p.RunNow(ctx)
	p.cron.Start()
}

// Stop halts the schedule and waits for a running probe to finish.
func (p *Prober) Stop() {
	<-p.cron.Stop().Done()
}

// RunNow runs the probe immediately and records its result.
func (p *Prober) RunNow(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	err := p.probe(ctx)
	result := ProbeResult{Err: err, CheckedAt: time.Now(), Duration: time.Since(start)}

	p.mu.Lock()
	previous := p.last
	p.last = result
	p.mu.Unlock()

	switch {
	case err != nil:
		p.logger.Warn("probe failed", "error", err, "duration", result.Duration)
	case previous.Err != nil:
		p.logger.Info("probe recovered", "duration", result.Duration)
	default:
		p.logger.Debug("probe succeeded", "duration", result.Duration)
	}

	if p.onResult != nil {
		p.onResult(err)
	}
	return err
}

// Last returns the most recent probe result.
func (p *Prober) Last() ProbeResult {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last
}

// Check reports the cached probe result. It is a CheckFunc suitable for
// Checker.RegisterCheck. A probe that has not run yet counts as healthy.
func (p *Prober) Check(ctx context.Context) error {
	last := p.Last()
	if last.Err != nil {
		return fmt.Errorf("%s probe failed at %s: %w", p.name, last.CheckedAt.Format(time.RFC3339), last.Err)
	}
	return nil
}
