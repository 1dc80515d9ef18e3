package httpclient

import (
	"net/http"
	"time"

	"fulfillment-tracker/internal/core/logger"
	"fulfillment-tracker/internal/core/metrics"

	"go.uber.org/zap"
)

// LoggingRoundTripper logs outbound requests and records their latency.
type LoggingRoundTripper struct {
	// Proxied is the underlying RoundTripper to execute the request.
	Proxied http.RoundTripper
	// Component names the caller in log entries.
	Component string
}

// RoundTrip executes the request and logs details.
// Only scheme, host and path are logged so query secrets never reach the logs.
func (lrt *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	log := logger.Named(lrt.Component)
	target := req.URL.Scheme + "://" + req.URL.Host + req.URL.Path

	log.Debug("HTTP Request Started",
		zap.String("method", req.Method),
		zap.String("url", target),
	)

	resp, err := lrt.Proxied.RoundTrip(req)

	duration := time.Since(start)
	metrics.OutboundRequestDuration.WithLabelValues(req.URL.Host).Observe(duration.Seconds())

	if err != nil {
		log.Error("HTTP Request Failed",
			zap.String("method", req.Method),
			zap.String("url", target),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	log.Debug("HTTP Request Completed",
		zap.String("method", req.Method),
		zap.String("url", target),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	return resp, nil
}

// NewClient returns an http.Client with logging middleware.
func NewClient(component string, timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &LoggingRoundTripper{
			Proxied:   http.DefaultTransport,
			Component: component,
		},
		Timeout: timeout,
	}
}
