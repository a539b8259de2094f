// Package health exposes the health of a service and of the dependencies it
// reaches through resilience circuit breakers.
//
// A Checker reports one component as healthy, degraded or unhealthy. An
// Aggregator runs a set of checkers under a shared timeout and combines
// their results. CircuitChecker turns a resilience.Registry into a checker,
// so open circuits surface on the service's health endpoints:
//
//	exec := resilience.NewExecutor()
//
//	agg := health.NewAggregator()
//	agg.Register("circuits", health.NewCircuitChecker(exec.Registry()))
//	agg.Register("database", health.NewCheckerFunc("database", func(ctx context.Context) health.Result {
//	    if err := pool.Ping(ctx); err != nil {
//	        return health.Unhealthy("ping failed", err)
//	    }
//	    return health.Healthy("ok")
//	}))
//
//	mux := http.NewServeMux()
//	health.RegisterHandlers(mux, agg) // /healthz, /readyz, /health
package health
