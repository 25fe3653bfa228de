// Package internal contains the core implementation packages for vigil.
//
// This package follows Go's internal package convention, making these
// packages unavailable for import by external modules while providing
// all the core functionality for the vigil CLI tool.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - build: External build command invocation and result capture
//   - config: Configuration management with validation
//   - console: Operator-facing status output
//   - errors: Build error types and collection
//   - logging: Structured logging on top of log/slog
//   - server: Minimal GET-only static file server over raw TCP
//   - version: Build-time version information
//   - watcher: Polling snapshot/diff change detection
//
// # Inter-Package Communication
//
// The watcher and server never call each other: the watch loop rebuilds the
// output directory and the server reads it from disk, so the filesystem is
// the only channel between the two long-lived activities. The cmd package
// wires a build-invoking change handler into the watcher and runs both
// activities under one errgroup.
package internal
