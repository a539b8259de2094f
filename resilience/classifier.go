package resilience

import (
	"errors"
	"strings"
)

// Classifier maps a failure to a Category.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: Classify must not panic and must return a defined Category for
// every input, including errors it does not recognise.
type Classifier interface {
	Classify(err error) Category
}

// ClassifierFunc adapts an ordinary function to the Classifier interface.
type ClassifierFunc func(err error) Category

// Classify calls f(err).
func (f ClassifierFunc) Classify(err error) Category {
	return f(err)
}

// DefaultTransientPatterns are matched first, case-insensitively.
var DefaultTransientPatterns = []string{
	"rate limit",
	"rate_limit",
	"ratelimit",
	"too many requests",
	"429",
	"timeout",
	"timed out",
	"etimedout",
	"econnreset",
	"connection reset",
	"econnrefused",
	"connection refused",
	"502",
	"503",
	"504",
	"bad gateway",
	"service unavailable",
	"gateway timeout",
	"network error",
	"socket hang up",
	"deadlock",
	"lock timeout",
	"lock wait timeout",
}

// DefaultPermanentPatterns are matched after the transient set.
var DefaultPermanentPatterns = []string{
	"invalid api key",
	"invalid_api_key",
	"invalid x-api-key",
	"401",
	"403",
	"unauthorized",
	"forbidden",
	"400",
	"bad request",
	"404",
	"not found",
	"validation error",
	"unique constraint",
	"foreign key constraint",
}

// PatternClassifier classifies errors by substring matching on the error
// text. Unmatched errors are Transient: an unrecognised failure is assumed
// recoverable rather than abandoned.
type PatternClassifier struct {
	transient []string
	permanent []string
}

// NewPatternClassifier creates a classifier from two pattern sets. Patterns
// are compared case-insensitively.
func NewPatternClassifier(transient, permanent []string) *PatternClassifier {
	return &PatternClassifier{
		transient: lowerAll(transient),
		permanent: lowerAll(permanent),
	}
}

// Classify implements Classifier.
func (c *PatternClassifier) Classify(err error) Category {
	if err == nil {
		return CategoryUnknown
	}
	if category, ok := declaredCategory(err); ok {
		return category
	}

	msg := strings.ToLower(err.Error())
	if containsAny(msg, c.transient) {
		return CategoryTransient
	}
	if containsAny(msg, c.permanent) {
		return CategoryPermanent
	}
	return CategoryTransient
}

var defaultClassifier = NewPatternClassifier(DefaultTransientPatterns, DefaultPermanentPatterns)

// DefaultClassifier returns the shared pattern classifier built from the
// default pattern sets.
func DefaultClassifier() Classifier {
	return defaultClassifier
}

// Classify classifies err with the default classifier.
func Classify(err error) Category {
	return defaultClassifier.Classify(err)
}

// DeclaredCategory returns the category a caller attached to err through a
// *PermanentError or *RetriableError wrapper, or through ErrTimeout.
// Provider-specific classifiers use it to honour explicit declarations
// before inspecting the error themselves.
func DeclaredCategory(err error) (Category, bool) {
	return declaredCategory(err)
}

func declaredCategory(err error) (Category, bool) {
	var pe *PermanentError
	if errors.As(err, &pe) {
		return CategoryPermanent, true
	}
	var re *RetriableError
	if errors.As(err, &re) {
		return re.Category, true
	}
	if errors.Is(err, ErrTimeout) {
		return CategoryTransient, true
	}
	return 0, false
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
