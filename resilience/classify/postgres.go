package classify

import (
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jonwraymond/retrykit/resilience"
)

// Transient SQLSTATE codes outside the wholly transient classes.
// See https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

// SQLSTATE classes whose every code is transient.
var pgTransientClasses = []string{
	"08", // connection exception
	"53", // insufficient resources
	"57", // operator intervention
}

// SQLSTATE classes whose every code is permanent.
var pgPermanentClasses = []string{
	"22", // data exception
	"23", // integrity constraint violation
	"28", // invalid authorization specification
	"42", // syntax error or access rule violation
}

// Postgres returns a classifier for errors from pgx and pgconn.
//
// A *pgconn.PgError is judged by its SQLSTATE code. Errors that pgconn
// reports as timeouts or as safe to retry, along with network timeouts, are
// transient. Everything else is left to the default pattern classifier.
func Postgres() resilience.Classifier {
	return matcherClassifier{match: matchPostgres}
}

func matchPostgres(err error) (resilience.Category, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return postgresCode(pgErr.Code)
	}

	if pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return resilience.CategoryTransient, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return resilience.CategoryTransient, true
	}

	return resilience.CategoryUnknown, false
}

// postgresCode maps a SQLSTATE code to a category. Codes in classes not
// listed here, such as 40002 or XX000, get no verdict.
func postgresCode(code string) (resilience.Category, bool) {
	switch code {
	case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
		return resilience.CategoryTransient, true
	}

	if hasClass(code, pgTransientClasses) {
		return resilience.CategoryTransient, true
	}
	if hasClass(code, pgPermanentClasses) {
		return resilience.CategoryPermanent, true
	}
	return resilience.CategoryUnknown, false
}

func hasClass(code string, classes []string) bool {
	for _, class := range classes {
		if strings.HasPrefix(code, class) {
			return true
		}
	}
	return false
}
