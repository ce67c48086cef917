package chat

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrMessageNotFound means the targeted message no longer exists in the chat.
	ErrMessageNotFound = errors.New("message not found")
	// ErrNotModified means an edit carried exactly the content already shown.
	ErrNotModified = errors.New("message not modified")
)

// TransientError is an expected, retryable failure (rate limit, timeout, network).
type TransientError struct {
	Op         string
	Err        error
	RetryAfter time.Duration
}

func (e *TransientError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s: transient failure (retry after %s): %v", e.Op, e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("%s: transient failure: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// Class names the failure class for logs and metrics: "not_found", "not_modified",
// "transient" or "unexpected". Unexpected failures point at our own bugs.
func Class(err error) string {
	var te *TransientError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMessageNotFound):
		return "not_found"
	case errors.Is(err, ErrNotModified):
		return "not_modified"
	case errors.As(err, &te):
		return "transient"
	default:
		return "unexpected"
	}
}
