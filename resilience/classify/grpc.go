package classify

import (
	"time"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jonwraymond/retrykit/resilience"
)

// GRPC returns a classifier for gRPC status errors.
//
// Unavailable, DeadlineExceeded, ResourceExhausted and Aborted are
// transient. InvalidArgument, NotFound, AlreadyExists, PermissionDenied,
// Unauthenticated, FailedPrecondition, OutOfRange and Unimplemented are
// permanent. Other codes, and errors without a gRPC status, are left to the
// default pattern classifier.
func GRPC() resilience.Classifier {
	return matcherClassifier{match: matchGRPC}
}

func matchGRPC(err error) (resilience.Category, bool) {
	s, ok := status.FromError(err)
	if !ok {
		return resilience.CategoryUnknown, false
	}
	return grpcCode(s.Code())
}

func grpcCode(code codes.Code) (resilience.Category, bool) {
	switch code {
	case codes.Unavailable,
		codes.DeadlineExceeded,
		codes.ResourceExhausted,
		codes.Aborted:
		return resilience.CategoryTransient, true

	case codes.InvalidArgument,
		codes.NotFound,
		codes.AlreadyExists,
		codes.PermissionDenied,
		codes.Unauthenticated,
		codes.FailedPrecondition,
		codes.OutOfRange,
		codes.Unimplemented:
		return resilience.CategoryPermanent, true
	}
	return resilience.CategoryUnknown, false
}

// FromGRPCStatus declares the category of a gRPC status error.
//
// Permanent codes become *resilience.PermanentError. Other codes become
// *resilience.RetriableError, carrying the delay from an attached
// errdetails.RetryInfo as RetryAfter. Codes without a verdict are declared
// CategoryUnknown, which is still retried. Errors without a gRPC status are
// returned unchanged.
func FromGRPCStatus(err error) error {
	if err == nil {
		return nil
	}
	s, ok := status.FromError(err)
	if !ok {
		return err
	}

	category, ok := grpcCode(s.Code())
	if !ok {
		category = resilience.CategoryUnknown
	}
	if category == resilience.CategoryPermanent {
		return &resilience.PermanentError{Err: err}
	}

	return &resilience.RetriableError{
		Err:        err,
		Category:   category,
		RetryAfter: grpcRetryDelay(s),
	}
}

func grpcRetryDelay(s *status.Status) time.Duration {
	for _, detail := range s.Details() {
		info, ok := detail.(*errdetails.RetryInfo)
		if !ok || info.GetRetryDelay() == nil {
			continue
		}
		if d := info.GetRetryDelay().AsDuration(); d > 0 {
			return d
		}
	}
	return 0
}
