package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"shoplist/internal/model"
)

// Retrying retries failed saves. Attempts counts the first try, so 2 means one retry.
type Retrying struct {
	Gateway  Gateway
	Attempts int
	Backoff  time.Duration
	Logger   zerolog.Logger
}

func (r Retrying) Load(ctx context.Context) (model.Snapshot, error) {
	return r.Gateway.Load(ctx)
}

func (r Retrying) Save(ctx context.Context, snap model.Snapshot) error {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 1; i <= attempts; i++ {
		if err = r.Gateway.Save(ctx, snap); err == nil {
			return nil
		}
		r.Logger.Warn().Err(err).Int("attempt", i).Int("of", attempts).Msg("snapshot save failed")
		if i == attempts {
			break
		}
		if r.Backoff > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("save snapshot: %w", ctx.Err())
			case <-time.After(r.Backoff * time.Duration(i)):
			}
		}
	}
	return fmt.Errorf("save snapshot after %d attempts: %w", attempts, err)
}
