package main

import (
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/luxxxlucy/epost/internal/logutil"
)

var rootCmd = &cobra.Command{
	Use:               "epost",
	Short:             "EPOST: post-hoc analysis for equality saturation",
	Version:           release,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

var (
	configPath string
	verbose    bool

	cfg Config
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"path of a yaml, toml or json config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"log every parsed record")
}

// setup loads the configuration and wires logging and error reporting before
// any subcommand runs.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = loadConfig(configPath)
	if err != nil {
		return err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if err := logutil.ConfigureLogger(cfg.LogFormat, cfg.LogLevel); err != nil {
		return err
	}

	err = sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.SentryDSN,
		Environment: cfg.Environment,
		Release:     release,
	})
	if err != nil {
		return err
	}

	runID := uuid.New().String()
	log.Logger = log.With().Str("run_id", runID).Str("command", cmd.Name()).Logger()
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("run_id", runID)
		scope.SetTag("command", cmd.Name())
	})
	return nil
}
