package cli

import (
	"fmt"
	"os"

	"shoplist/internal/logging"
	"shoplist/internal/store"

	"github.com/spf13/cobra"
)

func newImportCmd(app *App) *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "import <products.json>",
		Short: "Replace the stored list with the contents of a JSON file",
		Long: `Reads either a file written by this program or the name-keyed products.json of the
older bot, and saves it through the configured backend. Old records get fresh ids.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.config(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			log, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return writeErr(cmd, err)
			}

			b, err := os.ReadFile(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			snap, err := store.DecodeSnapshot(b)
			if err != nil {
				return writeErr(cmd, fmt.Errorf("%s: %w", args[0], err))
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
			if n := len(current.Items); n > 0 && !replace {
				return writeErr(cmd, listNotEmptyError{items: n})
			}
			if err := gw.Save(ctx, snap); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"imported": len(snap.Order),
				"replaced": len(current.Items),
				"path":     cfg.DataPath,
				"backend":  cfg.Backend,
			})
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "Overwrite a non-empty list")
	return cmd
}
