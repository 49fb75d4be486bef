package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"programtrack/internal/platform/config"
)

// cli carries the configuration shared by every subcommand.
type cli struct {
	v       *viper.Viper
	cfgFile string
	envFile string
}

func newRootCmd() *cobra.Command {
	c := &cli{v: config.NewViper()}

	root := &cobra.Command{
		Use:           "programtrack",
		Short:         "Track program distributions, signed acknowledgments and PDF receipts.",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(c.envFile); err != nil {
				return err
			}
			return config.ReadFile(c.v, c.cfgFile)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (yaml, toml or json)")
	flags.StringVar(&c.envFile, "env-file", "", "dotenv file to load (default .env when present)")
	flags.String("data-dir", "programs", "directory holding the registry, member tables and receipts")
	flags.String("storage", config.StorageCSV, "storage backend: csv or sqlite")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	_ = c.v.BindPFlag(config.KeyDataDir, flags.Lookup("data-dir"))
	_ = c.v.BindPFlag(config.KeyStorage, flags.Lookup("storage"))
	_ = c.v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))

	root.AddCommand(
		newServeCmd(c),
		newProgramsCmd(c),
		newImportCmd(c),
	)
	return root
}

// app loads the configuration and builds the application graph.
func (c *cli) app(ctx context.Context) (*app, error) {
	cfg, err := config.Load(c.v)
	if err != nil {
		return nil, err
	}
	return newApp(ctx, cfg)
}
