package constants

import (
	"time"
)

// Upload lifecycle
const (
	// UploadFieldName - multipart form field carrying every staged file.
	// The server expects the field repeated once per file.
	UploadFieldName = "files"

	// UploadSettleDelay - pause after a terminal upload state before the
	// controller resets to idle. Lets the user perceive the 100%/failure
	// state before the progress indicator clears.
	UploadSettleDelay = 500 * time.Millisecond
)

// Preview
const (
	// TextPreviewLimit - maximum number of characters shown for a text
	// preview. Longer files are cut here and marked as truncated; the
	// preview is deliberately lossy so latency stays bounded regardless
	// of file size.
	TextPreviewLimit = 5000

	// TruncationMarker - appended to a text preview that was cut short.
	TruncationMarker = "..."
)

// PDF viewer
const (
	// PDFInitialScale - scale a freshly opened document renders at.
	PDFInitialScale = 1.0

	// PDFMinScale / PDFMaxScale - zoom bounds. Requests beyond the bounds
	// are ignored, not clamped mid-way and not errors.
	PDFMinScale = 0.5
	PDFMaxScale = 2.5

	// PDFScaleStep - fixed zoom increment.
	PDFScaleStep = 0.1
)

// HTTP client
const (
	// HTTPMaxIdleConns - total idle connections across all hosts.
	HTTPMaxIdleConns = 64

	// HTTPMaxIdleConnsPerHost - idle connections kept per host. The client
	// only ever talks to the one collaborator host.
	HTTPMaxIdleConnsPerHost = 16

	// HTTPIdleConnTimeout - how long idle connections are kept alive.
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPTLSHandshakeTimeout - TLS handshake deadline.
	HTTPTLSHandshakeTimeout = 15 * time.Second

	// HTTPRequestTimeout - default per-request timeout for short calls
	// (list, delete, auth). Uploads and downloads set their own deadlines
	// via context.
	HTTPRequestTimeout = 30 * time.Second
)

// Read retry configuration (idempotent GETs only)
const (
	// ReadRetryMax - retry attempts for list/check-login/download calls.
	ReadRetryMax = 3

	// ReadRetryWaitMin - initial backoff delay.
	ReadRetryWaitMin = 500 * time.Millisecond

	// ReadRetryWaitMax - backoff cap.
	ReadRetryWaitMax = 5 * time.Second
)

// Event system
const (
	// EventBusDefaultBuffer - default buffer size for event channels.
	EventBusDefaultBuffer = 256

	// EventBusMaxBuffer - cap for caller-requested buffer sizes.
	EventBusMaxBuffer = 4096
)
