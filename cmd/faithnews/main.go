package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"faithnews/internal/app"
	"faithnews/internal/config"

	"github.com/spf13/cobra"
)

var version = "dev"

var flagConfig string

var rootCmd = &cobra.Command{
	Use:          "faithnews",
	Short:        "Faith news RSS aggregator",
	Long:         "faithnews polls Christian news feeds, interleaves articles by source and serves them over a JSON API.",
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the refresh worker",
	RunE:  runServe,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Fetch every configured feed once and print a per-source report",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return app.Check(ctx, cfg, cmd.OutOrStdout())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "faithnews %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "config.yaml", "path to config file (YAML or JSON)")
	rootCmd.AddCommand(serveCmd, checkCmd, versionCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("could not load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	application, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("could not init app: %w", err)
	}
	return application.Run()
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
