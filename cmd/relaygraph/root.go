package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hanpama/relaygraph/internal/config"
	"github.com/hanpama/relaygraph/internal/logging"
)

type rootOptions struct {
	logLevel  string
	logFormat string
	noEnv     bool

	logger *logrus.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "relaygraph",
		Short: "Relay-compliant GraphQL schema server",
		Long: `relaygraph serves the Relay example schema over HTTP and prints its SDL.

Configuration is read from flags, falling back to environment variables.
Local .env and .env.dev files are loaded first unless --no-env is given.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !opts.noEnv {
				config.LoadEnv(nil)
			}
			if !cmd.Flags().Changed("log.level") {
				opts.logLevel = config.GetEnv(config.EnvLogLevel, opts.logLevel)
			}
			if !cmd.Flags().Changed("log.format") {
				opts.logFormat = config.GetEnv(config.EnvLogFormat, opts.logFormat)
			}
			logger, err := logging.NewLogger(logging.Options{
				Level:  opts.logLevel,
				Format: opts.logFormat,
				Output: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log.level", "info", "Log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log.format", "json", "Log format (json or text)")
	cmd.PersistentFlags().BoolVar(&opts.noEnv, "no-env", false, "Do not load .env files")

	cmd.AddCommand(newServeCmd(opts), newPrintSchemaCmd(opts))
	return cmd
}
