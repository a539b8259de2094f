// Package resilience runs calls to unreliable remote dependencies under
// retry, exponential backoff, per-attempt timeouts and a circuit breaker.
//
// # Components
//
//   - Classifier: maps an error to CategoryTransient, CategoryPermanent or
//     CategoryUnknown. The default PatternClassifier matches error text;
//     package classify adds provider-aware classifiers.
//
//   - ComputeDelay: exponential backoff with a Retry-After floor, a
//     MaxDelay cap and up to 30% additive jitter.
//
//   - Registry: one circuit breaker per operation name, moving between
//     closed, open and half-open.
//
//   - Executor: the retry loop tying the above together. It reports every
//     outcome through a Result rather than panicking or returning bare
//     errors.
//
//   - Catalog: named policies for common dependency kinds, loadable from
//     YAML.
//
// # Usage
//
//	exec := resilience.NewExecutor(
//	    resilience.WithInstrumentation(instr),
//	)
//
//	res := resilience.Execute(ctx, exec, "llm:embed", resilience.EmbeddingAPIPolicy(),
//	    func(ctx context.Context) ([]float32, error) {
//	        return client.Embed(ctx, text)
//	    })
//	if !res.OK() {
//	    log.Printf("embed failed after %d attempts: %v", res.Attempts, res.Err)
//	}
//
// Result.Get converts a Result into the usual (value, error) pair, wrapping
// exhausted retries in ErrMaxRetriesExceeded.
//
// # Circuit breaking
//
// The operation name passed to Execute keys the circuit. The breaker sees one
// outcome per Execute call, not one per attempt: a call that recovers on
// its third attempt counts as a success. Once CircuitBreakerThreshold
// consecutive calls fail, the circuit opens and calls are rejected with
// ErrCircuitOpen for CircuitBreakerTimeout. The first call after that is
// admitted as a probe; its outcome closes or reopens the circuit.
//
// Circuit state is held in memory and is local to the Registry.
package resilience
