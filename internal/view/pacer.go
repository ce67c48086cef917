package view

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces out consecutive bulk sends.
type Pacer interface {
	Wait(ctx context.Context) error
}

// RatePacer allows one send immediately and then one per delay.
type RatePacer struct {
	lim *rate.Limiter
}

// NewRatePacer returns a pacer with the given inter-message delay; delay <= 0 never waits.
func NewRatePacer(delay time.Duration) *RatePacer {
	if delay <= 0 {
		return &RatePacer{lim: rate.NewLimiter(rate.Inf, 1)}
	}
	return &RatePacer{lim: rate.NewLimiter(rate.Every(delay), 1)}
}

func (p *RatePacer) Wait(ctx context.Context) error {
	return p.lim.Wait(ctx)
}

// NoDelay never waits.
var NoDelay Pacer = NewRatePacer(0)
