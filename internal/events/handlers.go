package events

import "log/slog"

// LogConfig configures LogHandler.
type LogConfig struct {
	// Logger is the slog.Logger events are written to (default: slog.Default()).
	Logger *slog.Logger

	// IncludePayload adds the event payload to the structured fields of
	// the same record, at the record's own level.
	IncludePayload bool
}

// LogHandler returns a Handler that logs each event as a structured slog
// record, severity scaled to whether the event reports a failure.
func LogHandler(cfg LogConfig) Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(e Event) {
		attrs := []any{"job_id", e.JobID}
		if e.ExecutionID != 0 {
			attrs = append(attrs, "execution_id", e.ExecutionID)
		}
		if e.Status != "" {
			attrs = append(attrs, "status", e.Status)
		}
		if e.Member != "" {
			attrs = append(attrs, "member", e.Member)
		}
		if cfg.IncludePayload && e.Payload != nil {
			attrs = append(attrs, "payload", e.Payload)
		}

		if e.IsFailure() {
			attrs = append(attrs, "error", e.Err)
			logger.Error(string(e.Type), attrs...)
			return
		}
		logger.Info(string(e.Type), attrs...)
	}
}
