package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/vigil/internal/build"
	"github.com/conneroisu/vigil/internal/config"
	"github.com/conneroisu/vigil/internal/console"
	"github.com/conneroisu/vigil/internal/errors"
	"github.com/conneroisu/vigil/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch for file changes and rebuild without serving",
	Long: `Watch the configured roots and rerun the build command on changes,
without starting the preview server. Useful when something else already
serves the output directory.

Examples:
  vigil watch                     # Watch all configured roots
  vigil watch --command "make"    # Run a custom command on changes`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringP("command", "c", "", "Custom command to run on changes")
	watchCmd.Flags().Duration("interval", 0, "Polling interval (e.g. 500ms)")

	viper.BindPFlag("build.command", watchCmd.Flags().Lookup("command"))
	viper.BindPFlag("watch.interval", watchCmd.Flags().Lookup("interval"))
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := newLogger(cfg)
	reporter := console.NewReporter()

	runner, err := build.NewRunner(cfg.Build.Command, cfg.Build.Dir, logger)
	if err != nil {
		return fmt.Errorf("failed to create build runner: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := errors.NewErrorCollector()

	pollWatcher := watcher.NewPollWatcher(cfg.Watch.Roots, cfg.Watch.Interval, logger)
	pollWatcher.AddHandler(buildOnChange(ctx, runner, reporter, collector))

	if err := pollWatcher.Run(ctx); !stderrors.Is(err, context.Canceled) {
		return err
	}

	reporter.Stopping()
	reporter.LastBuildFailure(collector.Last())
	return nil
}
