// Package logging provides structured logging for the influxwire tools.
//
// This package wraps Go's standard log/slog package. The line protocol
// packages do not log; only the command-line entry points do.
//
// # Features
//
//   - JSON output for machines, text output for terminals
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stderr"   # stdout, stderr, discard
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("batch written", "lines", 5000)
//	logger.Error("batch failed", "error", err)
package logging
