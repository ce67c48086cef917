package cli

import (
	"errors"

	"shoplist/internal/logging"
	"shoplist/internal/model"

	"github.com/spf13/cobra"
)

var errResetUnconfirmed = errors.New("refusing to empty the list without --yes")

func newResetCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Empty the stored list",
		Long: `Saves an empty list. Messages the bot already posted stay in the chat; the next
/list starts over.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return writeErr(cmd, errResetUnconfirmed)
			}
			cfg, err := app.config(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			log, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return writeErr(cmd, err)
			}
			gw, err := openGateway(cfg, log)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx := cmd.Context()
			current, err := gw.Load(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := gw.Save(ctx, model.EmptySnapshot()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"removed": len(current.Items)})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm that every item should be removed")
	return cmd
}
