// Package logger provides the structured diagnostic logger used by the
// BillingLogix client, built on zerolog.
//
// Loggers are plain values: there is no global logger and the zerolog
// global level is never touched, so several clients with different
// settings can live in one process.
//
// # Configuration
//
//	log:
//	  level: "debug"
//	  format: "console"
//	  output: "stderr"
//
// # Usage
//
//	log := logger.New(&logger.Config{Level: "debug"}, "billinglogix")
//	log.Debug("request options", logger.Fields("method", "GET", "path", "/tags"))
package logger
