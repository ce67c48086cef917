package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"shoplist/internal/logging"
	"shoplist/internal/metrics"
	"shoplist/internal/model"
	"shoplist/internal/telegram"

	"github.com/spf13/cobra"
)

var errNoToken = errors.New("no bot token; set BOT_TOKEN or bot_token in the config file")

func newRunCmd(app *App) *cobra.Command {
	var chatID int64
	var metricsAddr string
	var debug bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Serve the list in a Telegram chat until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.config(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			if cmd.Flags().Changed("chat-id") {
				cfg.ChatID = chatID
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.MetricsAddr = metricsAddr
			}
			if cfg.BotToken == "" {
				return writeErr(cmd, errNoToken)
			}

			log, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			bot, err := telegram.New(cfg.BotToken, telegram.Options{
				Timeout: cfg.CallTimeout,
				Logger:  logging.Component(log, "telegram"),
				Debug:   debug,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			r, err := newRouter(ctx, cfg, log, bot, model.ChatID(cfg.ChatID))
			if err != nil {
				return writeErr(cmd, err)
			}

			if cfg.MetricsAddr != "" {
				go func() {
					if err := metrics.Serve(ctx, cfg.MetricsAddr); err != nil {
						log.Error().Err(err).Str("addr", cfg.MetricsAddr).Msg("metrics listener stopped")
					}
				}()
				log.Info().Str("addr", cfg.MetricsAddr).Msg("serving metrics")
			}

			log.Info().Int64("chat_id", cfg.ChatID).Msg("serving")
			err = r.Serve(ctx, bot.Events(ctx))
			if errors.Is(err, context.Canceled) {
				err = nil
			}
			log.Info().Msg("stopped")
			return err
		},
	}
	cmd.Flags().Int64Var(&chatID, "chat-id", 0, "Serve only this chat (0: the first chat that writes)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Expose Prometheus metrics on this address, e.g. :9090")
	cmd.Flags().BoolVar(&debug, "debug", false, "Log every Bot API request")
	return cmd
}
