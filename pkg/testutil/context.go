package testutil

import (
	"net/http"
	"time"

	"brandcert/pkg/requestcontext"
)

// WithRequestID adds a request ID to the request context.
// This simulates what the request ID middleware would do.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// WithFixedTime pins the context clock so handlers observe a deterministic
// timestamp instead of wall time.
func WithFixedTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}
