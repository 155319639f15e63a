// Package health provides liveness, readiness and version endpoints for the
// vetchat relay, plus a scheduled upstream probe.
//
// # Endpoints
//
//   - /health: the process is running
//   - /ready: every registered check passes (503 otherwise)
//   - /version: build information
//
// # Upstream Probe
//
// Calling the upstream on every readiness request would spend quota, so a
// Prober runs the upstream check on a cron schedule and readiness reads the
// cached result:
//
//	prober, err := health.NewProber("upstream", "@every 1m", 5*time.Second, provider.Check, nil)
//	if err != nil {
//	    return err
//	}
//	prober.Start(ctx)
//	defer prober.Stop()
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("upstream", prober.Check)
//	health.Register(mux, checker, version, commit, buildTime)
package health
