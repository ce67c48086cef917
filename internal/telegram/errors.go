package telegram

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"shoplist/internal/chat"
)

// classify maps Bot API failures onto the chat error taxonomy. Anything it doesn't
// recognise is returned wrapped, and treated upstream as a bug.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		desc := strings.ToLower(apiErr.Message)
		switch {
		case strings.Contains(desc, "message is not modified"):
			return fmt.Errorf("%s: %w", op, chat.ErrNotModified)
		case strings.Contains(desc, "message to edit not found"),
			strings.Contains(desc, "message to delete not found"),
			strings.Contains(desc, "message can't be deleted"),
			strings.Contains(desc, "message can't be edited"):
			return fmt.Errorf("%s: %w", op, chat.ErrMessageNotFound)
		case apiErr.Code == http.StatusTooManyRequests:
			return &chat.TransientError{
				Op:         op,
				Err:        err,
				RetryAfter: time.Duration(apiErr.RetryAfter) * time.Second,
			}
		case apiErr.Code >= 500:
			return &chat.TransientError{Op: op, Err: err}
		}
		return fmt.Errorf("telegram %s: %w", op, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &chat.TransientError{Op: op, Err: err}
	}
	return fmt.Errorf("telegram %s: %w", op, err)
}
