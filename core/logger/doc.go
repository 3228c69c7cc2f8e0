// Package logger provides a structured logging facility based on Zap.
//
// New builds a logger from the Log section of the configuration: the debug
// level switches to Zap's development preset, and the console format swaps
// the JSON encoder for a colored, human readable one.
//
// # Context Awareness
//
// WithRayID extracts the request id that the rayid middleware stores in the
// Fiber context and attaches it to the log entry, so every line logged while
// serving a request can be correlated.
//
// # Usage
//
//	log, _ := logger.New(&cfg.Log)
//	log.Info("Server started")
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Handler failed", zap.Error(err))
package logger
