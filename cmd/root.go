package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vigil",
	Short: "A polling dev daemon for static sites",
	Long: `Vigil watches your source directories, reruns your build command when
anything changes, and serves the build output for live preview.

It polls modification times on a fixed interval rather than subscribing to
filesystem events, batches every change seen in one tick into a single
rebuild, and serves the output directory over a minimal GET-only HTTP server.

Quick Start:
  vigil init                     Write a starter .vigil.yml
  vigil serve                    Watch, rebuild, and serve
  vigil watch                    Watch and rebuild without serving
  vigil build                    Run the build once`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .vigil.yml, can also use VIGIL_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig initializes the configuration system.
//
// Configuration loading priority (highest to lowest):
//  1. --config flag: explicitly specified config file path
//  2. VIGIL_CONFIG_FILE environment variable: custom config file path
//  3. Default: .vigil.yml in the current directory
//
// Environment variables with the VIGIL_ prefix override file values, e.g.
// VIGIL_SERVER_PORT=3000.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("VIGIL_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".vigil")
	}

	viper.SetEnvPrefix("VIGIL")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing or malformed config file is not fatal; defaults apply.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
