package engine

import "log/slog"

// LoggingObserver is a simple observer that logs all events using structured logging
type LoggingObserver struct {
	logger *slog.Logger
}

// NewLoggingObserver creates a new logging observer; a nil logger means slog.Default()
func NewLoggingObserver(logger *slog.Logger) *LoggingObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent implements the Observer interface
func (lo *LoggingObserver) OnEvent(event Event) {
	lo.logger.Info("storage_lifecycle",
		"event", event.Type,
		"session_id", event.SessionID,
		"database", event.Database,
		"table", event.Table,
		"timestamp", event.Timestamp,
		"data", event.Data,
	)
}
