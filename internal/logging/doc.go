// Package logging provides structured logging for dmxlink.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the client. It provides both general logging
// functions and specialized functions for protocol-specific logging needs.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (hex dumps of raw inbound bytes, sent messages)
//   - Info: Normal operations (connections, identify results, state changes)
//   - Warn: Non-fatal issues (dropped late bytes, retries)
//   - Error: Fatal issues (connect failures, malformed responses)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Gateway identified",
//	    zap.String("endpoint", "/dev/ttyUSB0"),
//	    zap.String("version", "2.3"),
//	    zap.String("model", "DL-8"),
//	)
//
// # Specialized Logging
//
// Connection Logging:
//
//	logging.LogConnection(path, "opened")
//	logging.LogConnection(path, "closed")
//
// Protocol Logging:
//
//	logging.LogMessage(path, "GetUniverseData", 2)
//	logging.LogRawBytes("inbound chunk", data)
//
// # Configuration
//
// CLI commands are silent by default; set DMXLINK_LOG_LEVEL or call
// Initialize at startup:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
