package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/EdvardGK/reduzer-summary/internal/common"
	"github.com/EdvardGK/reduzer-summary/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app is the state shared by every command of one invocation.
type app struct {
	v        *viper.Viper
	settings *config.Settings
	cfgFile  string
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "reduzer",
		Short: "Summarise and compare GWP scenarios from Reduzer exports",
		Long: `reduzer ingests spreadsheets of building-component GWP line items,
classifies every row by scenario, discipline and MMI code, and compares
scenarios such as new-build (A) against renovation (C).

Edits to the classification are kept in saved projects.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.initConfig,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.config/reduzer/config.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")
	flags.String("db", "", "project database path (default: "+config.DefaultDatabasePath+")")

	_ = a.v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("logging.format", flags.Lookup("log-format"))
	_ = a.v.BindPFlag("database.path", flags.Lookup("db"))

	rootCmd.AddCommand(
		detectCmd(a),
		ingestCmd(a),
		summaryCmd(a),
		compareCmd(a),
		diagnoseCmd(a),
		mapCmd(a),
		reviewCmd(a),
		exportCmd(a),
		projectsCmd(a),
		authCmd(a),
		versionCmd(),
	)
	return rootCmd
}

func (a *app) initConfig(cmd *cobra.Command, _ []string) error {
	if err := config.Configure(a.v, a.cfgFile); err != nil {
		return err
	}

	settings, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.settings = settings

	level, err := common.ParseLevel(settings.Logging.Level)
	if err != nil {
		return err
	}
	if err := common.SetupLogger(level, settings.Logging.Format); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	slog.Debug("configuration loaded",
		"command", cmd.Name(),
		"config_file", a.v.ConfigFileUsed(),
		"database", settings.Database.Path)
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printf(cmd.OutOrStdout(), "reduzer %s\n", version)
		},
	}
}

func printf(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}
