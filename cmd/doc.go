// Package cmd provides the command-line interface for vigil.
//
// This package implements all CLI commands using the Cobra framework.
//
// # Available Commands
//
//   - serve: Start the dev daemon (watch, rebuild, serve the output directory)
//   - watch: Watch for file changes and trigger rebuilds without serving
//   - build: Run the configured build command once
//   - init: Write a starter .vigil.yml
//   - version: Show version information
//
// # Configuration Integration
//
// Commands respect configuration from multiple sources in order of precedence:
//
//  1. Command-line flags (highest priority)
//  2. Environment variables (VIGIL_*)
//  3. Configuration file (.vigil.yml)
//  4. Default values (lowest priority)
package cmd
