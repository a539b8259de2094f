package classify

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jonwraymond/retrykit/resilience"
)

// FromHTTPResponse turns the outcome of an HTTP round trip into an error
// with a declared category.
//
// A transport error is returned unchanged for the pattern classifier. A
// response with status 408, 429 or 5xx yields a transient
// *resilience.RetriableError whose RetryAfter comes from the Retry-After
// header. Any other 4xx yields a *resilience.PermanentError. Success and
// redirect statuses yield nil.
//
// FromHTTPResponse does not read or close the response body.
func FromHTTPResponse(resp *http.Response, err error) error {
	if err != nil {
		return err
	}
	if resp == nil || resp.StatusCode < http.StatusBadRequest {
		return nil
	}

	code := resp.StatusCode
	statusErr := fmt.Errorf("http status %s", statusText(resp))

	if retryableStatus(code) {
		after, _ := ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
		return &resilience.RetriableError{
			Err:        statusErr,
			Category:   resilience.CategoryTransient,
			StatusCode: code,
			RetryAfter: after,
		}
	}
	return &resilience.PermanentError{Err: statusErr, StatusCode: code}
}

func retryableStatus(code int) bool {
	return code == http.StatusRequestTimeout ||
		code == http.StatusTooManyRequests ||
		code >= http.StatusInternalServerError
}

func statusText(resp *http.Response) string {
	if resp.Status != "" {
		return resp.Status
	}
	return strconv.Itoa(resp.StatusCode) + " " + http.StatusText(resp.StatusCode)
}

// maxRetryAfterSeconds is the largest delta-seconds value a time.Duration
// holds. Larger hints saturate to it.
const maxRetryAfterSeconds = int64(math.MaxInt64 / time.Second)

// ParseRetryAfter parses a Retry-After header value given as delta-seconds
// or as an HTTP date relative to now. It reports false for empty, malformed,
// negative or past values. Delta-seconds beyond what a time.Duration holds
// saturate rather than wrap.
func ParseRetryAfter(value string, now time.Time) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	// Out-of-range integers come back as ±MaxInt64 with ErrRange.
	if seconds, err := strconv.ParseInt(value, 10, 64); err == nil || errors.Is(err, strconv.ErrRange) {
		if seconds < 0 {
			return 0, false
		}
		if seconds > maxRetryAfterSeconds {
			seconds = maxRetryAfterSeconds
		}
		return time.Duration(seconds) * time.Second, true
	}

	if t, err := http.ParseTime(value); err == nil {
		if d := t.Sub(now); d > 0 {
			return d, true
		}
	}
	return 0, false
}
