// Package slog provides the leveled logging contract used by the fault handlers, built on top of the standard library's log/slog package.
//
// The package exports the following main components:
//
//   - Level: the eight syslog-style severities (emergency, alert, critical, error, warning, notice, info, debug), mapped onto slog.Level values so handlers keep filtering by order.
//   - Logger: the narrow "log at level L" interface consumed by the fault dispatcher.
//   - SlogLogger: a Logger backed by a *slog.Logger, with per-level convenience methods and an optional minimum level.
//   - ReplaceLevelAttr: a ReplaceAttr hook that renders the custom levels (NOTICE, CRITICAL, ALERT, EMERGENCY) by name.
//   - FatalError: Logs an error message and terminates the application with exit code 1.
//     Useful for unrecoverable errors during startup or critical failures.
package slog
