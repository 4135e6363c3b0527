package log

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const headerRequestID = "X-Request-ID"

// Transport returns an http.RoundTripper that:
//  1. Reuses the request ID pinned on the request context, or generates one.
//  2. Sets the X-Request-ID request header.
//  3. Logs the completed call with status and latency.
//
// A nil next falls back to http.DefaultTransport.
func Transport(logger zerolog.Logger, next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &loggingTransport{logger: logger, next: next}
}

type loggingTransport struct {
	logger zerolog.Logger
	next   http.RoundTripper
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	reqID := req.Header.Get(headerRequestID)
	if reqID == "" {
		reqID = RequestID(req.Context())
	}
	if reqID == "" {
		reqID = uuid.New().String()
	}

	// RoundTrippers must not mutate the caller's request.
	req = req.Clone(req.Context())
	req.Header.Set(headerRequestID, reqID)

	child := t.logger.With().
		Str(FieldRequestID, reqID).
		Str(FieldMethod, req.Method).
		Str(FieldPath, req.URL.Path).
		Logger()

	resp, err := t.next.RoundTrip(req)
	latency := float64(time.Since(start).Milliseconds())
	if err != nil {
		child.Debug().
			Err(err).
			Float64(FieldLatency, latency).
			Msg("request failed")
		return nil, err
	}

	child.Debug().
		Int(FieldStatus, resp.StatusCode).
		Float64(FieldLatency, latency).
		Msg("request completed")

	return resp, nil
}
