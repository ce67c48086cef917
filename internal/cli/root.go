package cli

import (
	"fmt"
	"os"
	"strings"

	"shoplist/internal/config"
	"shoplist/internal/format"

	"github.com/spf13/cobra"
)

type App struct {
	ConfigPath string
	DataPath   string
	Backend    string
	LogLevel   string
	LogFormat  string
	PrettyJSON bool
	Format     string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "shoplist",
		Short:        "Shared shopping list bot for a group chat",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Serve the list in Telegram (BOT_TOKEN from the environment or .env)
  shoplist run

  # Try the bot locally, no Telegram account needed
  shoplist console --data /tmp/list.json

  # Print the stored list
  shoplist list --format markdown

  # Bring over a products.json written by the old bot
  shoplist import products.json
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr(config.EnvConfigPath, ""), "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(&app.DataPath, "data", "", "Path to the list file or database (overrides data_path)")
	cmd.PersistentFlags().StringVar(&app.Backend, "backend", "", "Storage backend (json|sqlite)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&app.LogFormat, "log-format", "", "Log format (console|json)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("SHOPLIST_FORMAT", "json"), "Output format (json|markdown)")

	cmd.AddCommand(newRunCmd(app))
	cmd.AddCommand(newConsoleCmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newResetCmd(app))

	return cmd
}

// config resolves the configuration and lays the persistent flags that were set on top.
func (app *App) config(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(app.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.DataPath = app.DataPath
	}
	if flags.Changed("backend") {
		cfg.Backend = app.Backend
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = app.LogLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = app.LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

type envelope struct {
	Data any `json:"data"`
}

// writeOut wraps JSON output in a {"data": ...} envelope; markdown renders the value
// itself.
func writeOut(cmd *cobra.Command, app *App, v any) error {
	switch app.Format {
	case "markdown", "md":
		return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
	default:
		return format.Write(cmd.OutOrStdout(), envelope{Data: v}, app.Format, app.PrettyJSON)
	}
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
