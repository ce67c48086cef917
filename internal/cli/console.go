package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"shoplist/internal/console"
	"shoplist/internal/logging"
	"shoplist/internal/model"
)

func newConsoleCmd(app *App) *cobra.Command {
	var userID int64
	var userName string
	var logFile string

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Chat with the bot in the terminal",
		Long: `Runs the bot against a local chat. Type an item name to add it, press buttons
with /press <message#> <button#>, switch users with /as <id> [name], leave with /quit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.config(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}

			// The terminal belongs to the UI; logs go to a file or nowhere.
			var w io.Writer = io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return writeErr(cmd, err)
				}
				defer f.Close()
				w = f
			}
			log, err := logging.New(w, cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return writeErr(cmd, err)
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			t := console.NewTransport()
			r, err := newRouter(ctx, cfg, log, t, console.ChatID)
			if err != nil {
				return writeErr(cmd, err)
			}
			done := make(chan error, 1)
			go func() { done <- r.Serve(ctx, t.Events()) }()

			err = console.Run(ctx, t, console.User{ID: model.UserID(userID), Name: userName})
			cancel()
			<-done
			if err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user-id", 1, "Id of the user you start as")
	cmd.Flags().StringVar(&userName, "user-name", "@you", "Display name of the user you start as")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Append logs to this file")
	return cmd
}
