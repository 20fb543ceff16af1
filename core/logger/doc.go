// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments
// (development vs production) for the reconciliation batch jobs.
//
// # Run Correlation
//
// Every stage run operates on a [from, to) window. The WithWindow helper
// attaches the window bounds to the log entry so the lines of one run can be
// grepped out of an interleaved job log; WithStage tags entries with the
// pipeline stage that emitted them.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Encoding: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&config.LogConfig{Level: "info"})
//	log.Info("Ingest finished", zap.Int("rows", n))
//
//	// In a stage runner:
//	l := logger.WithWindow(log, from, to)
//	l.Warn("No receipts in window")
package logger
