package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"BookTriage/internal/app"
	"BookTriage/internal/config"
	"BookTriage/internal/logging"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "booktriage",
		Short: "Sort exported posts into book reviews and everything else",
		Long: `booktriage classifies exported post bundles with pattern rules,
auto-approves posts linking to trusted publishers and walks the
remaining ambiguous posts with a human reviewer.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML config")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "classify",
		Short: "Route candidate posts into suspicious and nonpublish partitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Application) error {
				_, err := a.Classify(ctx, cmd.OutOrStdout())
				return err
			})
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "review",
		Short: "Review suspicious posts interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Application) error {
				_, err := a.Review(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
				return err
			})
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "explain <file>",
		Short: "Show which rules fire for a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Application) error {
				_, err := a.Explain(args[0], cmd.OutOrStdout())
				return err
			})
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "history <post-id>",
		Short: "Print the recorded moves of a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Application) error {
				_, err := a.History(ctx, args[0], cmd.OutOrStdout())
				return err
			})
		},
	})

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func withApp(ctx context.Context, run func(context.Context, *app.Application) error) error {
	cfg := config.Load(configPath)
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		return fmt.Errorf("start: %w", err)
	}
	defer application.Close()

	if err := run(ctx, application); err != nil {
		logger.Error("run stopped", "error", err)
		return err
	}
	return nil
}
