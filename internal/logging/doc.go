// Package logging provides structured logging for the netflame tools.
//
// This package wraps zap with convenience functions for the logging
// patterns used throughout the project. CLI commands stay silent by
// default; set NETFLAME_LOG_LEVEL to enable output:
//
//	NETFLAME_LOG_LEVEL=debug netflame status
//
// All log functions use structured fields for queryability:
//
//	logging.Info("connected to stove",
//	    zap.String("ip", "192.168.68.54"),
//	    zap.Int("operation", 1002),
//	)
//
// Retry attempts and raw device responses are logged at warn and debug
// level respectively, so a failing device can be diagnosed without
// changing code.
//
// All logging functions are safe for concurrent use.
package logging
