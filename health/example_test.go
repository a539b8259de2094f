package health_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/jonwraymond/retrykit/health"
	"github.com/jonwraymond/retrykit/resilience"
)

func ExampleNewCircuitChecker() {
	registry := resilience.NewRegistry()
	policy := resilience.Policy{CircuitBreakerThreshold: 2, CircuitBreakerTimeout: time.Minute}

	checker := health.NewCircuitChecker(registry)
	fmt.Println(checker.Check(context.Background()).Status)

	registry.RecordFailure("search", policy)
	registry.RecordFailure("search", policy)

	result := checker.Check(context.Background())
	fmt.Println(result.Status)
	fmt.Println(result.Message)
	// Output:
	// healthy
	// unhealthy
	// circuits open: search
}

func ExampleAggregator() {
	agg := health.NewAggregator(health.AggregatorConfig{Timeout: time.Second})
	agg.Register("database", health.NewCheckerFunc("database", func(ctx context.Context) health.Result {
		return health.Healthy("connected")
	}))
	agg.Register("replica", health.NewCheckerFunc("replica", func(ctx context.Context) health.Result {
		return health.Degraded("lag 12s")
	}))

	results := agg.CheckAll(context.Background())
	fmt.Println(results["database"].Status)
	fmt.Println(results["replica"].Status)
	fmt.Println(agg.OverallStatus(results))
	// Output:
	// healthy
	// degraded
	// degraded
}

func ExampleRegisterHandlers() {
	agg := health.NewAggregator()
	agg.Register("circuits", health.NewCircuitChecker(resilience.NewRegistry()))

	mux := http.NewServeMux()
	health.RegisterHandlers(mux, agg)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	fmt.Println(rec.Code, rec.Body.String())
	// Output:
	// 200 OK
}
