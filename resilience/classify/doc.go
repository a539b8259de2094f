// Package classify provides resilience classifiers that understand the
// errors of specific providers.
//
// The pattern classifier in package resilience only sees error text. The
// classifiers here inspect typed errors instead: PostgreSQL SQLSTATE codes
// carried by pgconn.PgError, gRPC status codes, and HTTP responses with
// their Retry-After header.
//
// Each provider classifier gives a verdict only for errors it recognises.
// Chain combines them and falls back to the default pattern classifier:
//
//	exec := resilience.NewExecutor(
//		resilience.WithClassifier(classify.Chain(classify.Postgres(), classify.GRPC())),
//	)
//
// HTTP and gRPC clients usually know more than the error text reveals,
// such as a server-supplied retry delay. FromHTTPResponse and FromGRPCStatus
// turn that knowledge into a declared *resilience.RetriableError or
// *resilience.PermanentError before the error reaches the executor:
//
//	res := resilience.Execute(ctx, exec, "llm:embed", policy,
//		func(ctx context.Context) ([]float32, error) {
//			resp, err := client.Do(req.WithContext(ctx))
//			if err := classify.FromHTTPResponse(resp, err); err != nil {
//				return nil, err
//			}
//			defer resp.Body.Close()
//			return decode(resp.Body)
//		})
package classify
