package cli

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"shoplist/internal/chat"
	"shoplist/internal/config"
	"shoplist/internal/list"
	"shoplist/internal/logging"
	"shoplist/internal/model"
	"shoplist/internal/render"
	"shoplist/internal/router"
	"shoplist/internal/store"
	"shoplist/internal/view"
)

const saveBackoff = 200 * time.Millisecond

// openGateway returns the configured backend behind the retry policy.
func openGateway(cfg config.Config, log zerolog.Logger) (store.Gateway, error) {
	opts, err := cfg.StoreOptions()
	if err != nil {
		return nil, err
	}
	gw, err := store.Open(opts)
	if err != nil {
		return nil, err
	}
	return store.Retrying{
		Gateway:  gw,
		Attempts: cfg.SaveAttempts,
		Backoff:  saveBackoff,
		Logger:   logging.Component(log, "store"),
	}, nil
}

// newRouter loads the list and wires it to client.
func newRouter(ctx context.Context, cfg config.Config, log zerolog.Logger, client chat.Client, chatID model.ChatID) (*router.Router, error) {
	gw, err := openGateway(cfg, log)
	if err != nil {
		return nil, err
	}
	l, err := list.Load(ctx, gw)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	v := view.New(client, l, view.Options{
		Formatter:   render.New(loc),
		Pacer:       view.NewRatePacer(cfg.RenderDelay),
		Logger:      logging.Component(log, "view"),
		CallTimeout: cfg.CallTimeout,
	})
	log.Info().Int("items", l.Len()).Str("data", cfg.DataPath).Str("backend", cfg.Backend).Msg("list loaded")
	return router.New(
		router.Session{List: l, View: v},
		router.Options{ChatID: chatID, Logger: logging.Component(log, "router")},
	), nil
}
