package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/vigil/internal/build"
	"github.com/conneroisu/vigil/internal/config"
	"github.com/conneroisu/vigil/internal/console"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Run the configured build command once",
	Long: `Run the external build command a single time and report its result.

Examples:
  vigil build                     # Run the configured command
  vigil build --command "hugo"    # Run a custom command`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringP("command", "c", "", "Build command to run")
	buildCmd.Flags().String("dir", "", "Working directory for the build")

	viper.BindPFlag("build.command", buildCmd.Flags().Lookup("command"))
	viper.BindPFlag("build.dir", buildCmd.Flags().Lookup("dir"))
}

func runBuild(cmd *cobra.Command, args []string) error {
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

	reporter.BuildStarted(runner.Command())
	result := runner.Run(cmd.Context())
	reporter.BuildResult(result)

	if buildErr := runner.Err(result); buildErr != nil {
		cmd.SilenceUsage = true
		return buildErr
	}
	return nil
}
