// Package http builds the HTTP clients the API layer runs on.
package http

import (
	"context"
	nethttp "net/http"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/http2"

	"github.com/ASL66/mirad-upload/internal/config"
	"github.com/ASL66/mirad-upload/internal/constants"
)

// ConfigureClient creates the plain HTTP client used for mutating calls
// (upload, delete, auth). No automatic retry: a failed mutation is surfaced
// to the user, who retries by resubmitting.
//
// The overall client timeout is left at zero; per-operation deadlines come
// from context so a large upload is not cut off by a short-call timeout.
func ConfigureClient(cfg *config.Config) *nethttp.Client {
	tr := &nethttp.Transport{
		MaxIdleConns:        constants.HTTPMaxIdleConns,
		MaxIdleConnsPerHost: constants.HTTPMaxIdleConnsPerHost,
		IdleConnTimeout:     constants.HTTPIdleConnTimeout,
		TLSHandshakeTimeout: constants.HTTPTLSHandshakeTimeout,
		ForceAttemptHTTP2:   true,
	}

	switch cfg.ProxyMode {
	case "no-proxy":
		tr.Proxy = nil
	default:
		// "system": standard HTTP_PROXY / HTTPS_PROXY / NO_PROXY handling.
		tr.Proxy = nethttp.ProxyFromEnvironment
	}

	_ = http2.ConfigureTransport(tr)

	return &nethttp.Client{
		Transport: tr,
		Timeout:   0,
	}
}

// retryLogger implements the retryablehttp.LeveledLogger interface and
// discards everything; retry outcomes surface through the API layer's
// errors instead.
type retryLogger struct{}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {}
func (l *retryLogger) Info(msg string, keysAndValues ...interface{})  {}
func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (l *retryLogger) Warn(msg string, keysAndValues ...interface{})  {}

// ConfigureReadClient wraps the base client with retry logic for the
// idempotent reads (list, check-login, download). Mutations never go
// through this client.
func ConfigureReadClient(cfg *config.Config) *nethttp.Client {
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = ConfigureClient(cfg)
	retryClient.RetryMax = constants.ReadRetryMax
	retryClient.RetryWaitMin = constants.ReadRetryWaitMin
	retryClient.RetryWaitMax = constants.ReadRetryWaitMax
	retryClient.Logger = &retryLogger{}

	// A 401 on a read is a session-expired signal, not a transient fault.
	// Keep the default policy otherwise (network errors, 5xx, 429).
	retryClient.CheckRetry = func(ctx context.Context, resp *nethttp.Response, err error) (bool, error) {
		if resp != nil && resp.StatusCode == nethttp.StatusUnauthorized {
			return false, nil
		}
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}

	client := retryClient.StandardClient()
	client.Timeout = 0
	return client
}
