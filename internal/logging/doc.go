// Package logging provides structured logging with per-module log levels.
//
// Records go to stdout (text or JSON) when stdout is usable and to the
// systemd journal when journald is reachable, or to both.
//
//	logging.Initialize(logging.Config{
//		Level:   "info",
//		Format:  "text",
//		Modules: map[string]string{"led": "debug"},
//	})
//
//	logger := logging.GetLogger("led")
//	logger.Info("LED state applied", "led_id", 3, "to", "yellow/slow")
//
// Loggers handed out before Initialize are updated in place: each module
// owns a slog.LevelVar that Initialize adjusts.
//
// Journal entries carry SYSLOG_IDENTIFIER=portled and one upper-cased field
// per attribute:
//
//	journalctl -t portled MODULE=led LED_ID=3
//
// TOML configuration:
//
//	[logging]
//	level = "info"
//	format = "text"
//	led = "debug"
package logging
