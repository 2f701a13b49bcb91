// Package commands implements the plugsunset command line.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/plugsunset/internal/config"
	"github.com/jmylchreest/plugsunset/internal/http/handlers"
	"github.com/jmylchreest/plugsunset/internal/utils"
)

type appContextKey struct{}

// app is what PersistentPreRunE hands to every subcommand
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	info   handlers.BuildInfo
}

// NewRootCommand creates the root command. Without a subcommand it runs the scheduler.
func NewRootCommand(info handlers.BuildInfo) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "plugsunset",
		Short:        "Switch a Kasa smart plug on at sunset and off at a fixed time",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadApp(cmd, info)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScheduler(cmd.Context(), getApp(cmd))
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "Path to config file")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("log-format", "", "Log format (text, json)")
	flags.String("alias", "", "Alias of the plug to control")
	flags.String("host", "", "Plug address; skips discovery")
	flags.String("listen", "", "Status API listen address, e.g. 127.0.0.1:8080")
	flags.String("mqtt-broker", "", "MQTT broker URL, e.g. tcp://localhost:1883")

	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newDiscoverCommand())
	cmd.AddCommand(newNextCommand())
	cmd.AddCommand(newStatusCommand())
	cmd.AddCommand(newConfigCommand())
	cmd.AddCommand(newOpenAPICommand(info))
	cmd.AddCommand(newVersionCommand(info))

	return cmd
}

func loadApp(cmd *cobra.Command, info handlers.BuildInfo) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		utils.SetupErrorLogger().Error("failed to load configuration", "error", err)
		return err
	}

	logger := utils.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)
	utils.SetAsDefaultLogger(logger)

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	cmd.SetContext(context.WithValue(parent, appContextKey{}, &app{cfg: cfg, logger: logger, info: info}))
	return nil
}

func getApp(cmd *cobra.Command) *app {
	if a, ok := cmd.Context().Value(appContextKey{}).(*app); ok {
		return a
	}
	panic(fmt.Sprintf("command %q ran without configuration", cmd.Name()))
}

// newVersionCommand creates the version command
func newVersionCommand(info handlers.BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:               "version",
		Short:             "Print version information",
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Version:    %s\n", info.Version)
			fmt.Fprintf(out, "Commit:     %s\n", info.Commit)
			fmt.Fprintf(out, "Build Date: %s\n", info.BuildDate)
		},
	}
}
