package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// RequestError is a store request the server answered with a failure.
// Code carries the server's machine-readable error code when one was
// returned; transport-level failures stay plain errors and never
// become RequestErrors.
type RequestError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *RequestError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("store request failed: status %d: %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("store request failed: status %d: %s", e.StatusCode, e.Message)
}

// policyBlockMarkers identify deletes the store refused because the
// target is protected. Server strings vary by release, so matching is
// best-effort.
var policyBlockMarkers = []string{"retention", "hold", "record"}

// IsPolicyBlocked reports whether err is the store refusing a delete
// because the version is protected by retention, a legal hold, or a
// record declaration. The structured error code is checked first, then
// the message text.
func IsPolicyBlocked(err error) bool {
	var re *RequestError
	if !errors.As(err, &re) {
		return false
	}
	code := strings.ToLower(re.Code)
	for _, m := range policyBlockMarkers {
		if strings.Contains(code, m) {
			return true
		}
	}
	msg := strings.ToLower(re.Message)
	for _, m := range policyBlockMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// IsRetryable reports whether err is worth another attempt: throttling,
// server-side failures, and transport errors. Other client errors are
// deterministic rejections and retrying them only burns rate limit.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var re *RequestError
	if errors.As(err, &re) {
		if re.StatusCode == http.StatusTooManyRequests {
			return true
		}
		return re.StatusCode >= 500
	}
	// No structured response means the request never completed
	// (connection reset, timeout mid-flight).
	return true
}
