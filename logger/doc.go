// Package logger provides structured logging for diard built on zerolog.
//
// A single global logger is initialized from config at startup; components
// derive tagged loggers from it:
//
//	logger.Init(cfg.Logging)
//	log := logger.WithComponent("staging")
//	log.Info("staged upload", logger.Fields("path", path, "bytes", n))
package logger
