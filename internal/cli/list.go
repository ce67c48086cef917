package cli

import (
	"shoplist/internal/logging"
	"shoplist/internal/render"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the stored list",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.config(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			log, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return writeErr(cmd, err)
			}
			gw, err := openGateway(cfg, log.Level(zerolog.WarnLevel))
			if err != nil {
				return writeErr(cmd, err)
			}
			snap, err := gw.Load(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			loc, err := cfg.Location()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, render.New(loc).Listing(snap.Ordered()))
		},
	}
	return cmd
}
