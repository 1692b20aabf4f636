// Package health implements the liveness and readiness probes.
//
// # Overview
//
// A Checker holds named component checks (token storage, audit store)
// and runs them concurrently on every readiness pass, each bounded by a
// per-check timeout. Liveness is deliberately check-free: it reports
// only that the process is up, so a dependency outage flips readiness
// without triggering restarts.
//
// # Usage
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("token_storage", func(ctx context.Context) error {
//	    _, err := backend.List(ctx)
//	    return err
//	})
//
//	mux.HandleFunc("/healthz", checker.LivenessHandler())
//	mux.HandleFunc("/readyz", checker.ReadinessHandler())
//
// # Probe Semantics
//
//   - /healthz always answers 200 while the process can serve HTTP.
//   - /readyz answers 200 with status "ready" when every check passes,
//     503 with status "degraded" when any check fails or times out.
//
// Both handlers accept GET and HEAD and respond with JSON.
package health
