// Package logging provides structured logging for mclc built on the standard
// slog package.
//
// All log entries carry a subsystem identifier so that output from the
// different authentication flows (DeviceCode, Xbox, Minecraft, Yggdrasil,
// Injector, Store) can be told apart. Logs go to stderr; user-facing output
// (device-code prompts, progress, tables) goes to stdout and is not routed
// through this package.
//
// Usage:
//
//	logging.Init(logging.LevelInfo, os.Stderr)
//	logging.Info("DeviceCode", "polling token endpoint every %s", interval)
//	logging.Error("Store", err, "failed to persist accounts")
package logging
