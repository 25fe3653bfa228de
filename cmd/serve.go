package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/conneroisu/vigil/internal/build"
	"github.com/conneroisu/vigil/internal/config"
	"github.com/conneroisu/vigil/internal/console"
	"github.com/conneroisu/vigil/internal/errors"
	"github.com/conneroisu/vigil/internal/logging"
	"github.com/conneroisu/vigil/internal/server"
	"github.com/conneroisu/vigil/internal/watcher"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Watch, rebuild, and serve the build output",
	Long: `Start the dev daemon: poll the watched roots for changes, rerun the
build command once per change batch, and serve the build output directory
over HTTP for live preview.

The watch loop and the preview server run concurrently and independently;
they share only the output directory on disk.

Examples:
  vigil serve                     # Use .vigil.yml settings
  vigil serve --port 3000         # Override the preview port
  vigil serve --root dist         # Serve a different output directory`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Port to serve on")
	serveCmd.Flags().String("host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().String("root", "public", "Document root (build output directory)")
	serveCmd.Flags().Duration("interval", 0, "Polling interval (e.g. 500ms)")

	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("server.root", serveCmd.Flags().Lookup("root"))
	viper.BindPFlag("watch.interval", serveCmd.Flags().Lookup("interval"))
}

func runServe(cmd *cobra.Command, args []string) error {
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

	srv := server.New(cfg.Server, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		// Announce the address only once the listener is actually
		// bound; a failed bind must not claim the server is serving.
		select {
		case <-srv.Ready():
			reporter.Serving(srv.Addr(), cfg.Server.Root)
		case <-gctx.Done():
		}
		return nil
	})
	g.Go(func() error {
		if err := pollWatcher.Run(gctx); !stderrors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	err = g.Wait()
	reporter.Stopping()
	reporter.LastBuildFailure(collector.Last())
	return err
}

// buildOnChange returns the change handler shared by serve and watch: report
// the batch, run exactly one build for it, report the result. Build failures
// are collected and reported, never returned as fatal.
func buildOnChange(ctx context.Context, runner *build.Runner, reporter *console.Reporter, collector *errors.ErrorCollector) watcher.ChangeHandler {
	return func(events []watcher.ChangeEvent) error {
		reporter.Changes(events)
		reporter.BuildStarted(runner.Command())

		result := runner.Run(ctx)
		reporter.BuildResult(result)

		if buildErr := runner.Err(result); buildErr != nil {
			collector.Add(buildErr)
		}
		return nil
	}
}

// newLogger builds the process logger from the log section of the config.
func newLogger(cfg *config.Config) logging.Logger {
	loggerConfig := logging.DefaultConfig()
	loggerConfig.Level = logging.ParseLevel(cfg.Log.Level)
	loggerConfig.Format = cfg.Log.Format
	return logging.NewLogger(loggerConfig)
}
