package fsmkit

import (
	"log/slog"
)

// LogListener returns a listener that logs machine events through the given
// structured logger: committed transitions at Info, blocked attempts and
// plain context changes at Debug. A nil logger falls back to slog.Default.
func LogListener[C any](logger *slog.Logger) Listener[C] {
	if logger == nil {
		logger = slog.Default()
	}

	return func(e Event[C]) {
		switch {
		case e.Blocked != "":
			logger.Debug("transition blocked",
				slog.String("machine_id", e.Machine.String()),
				slog.String("from", e.From),
				slog.String("to", e.To),
				slog.String("reason", string(e.Blocked)))
		case e.Kind == KindTransition:
			logger.Info("state transition",
				slog.String("machine_id", e.Machine.String()),
				slog.String("from", e.From),
				slog.String("to", e.To))
		default:
			logger.Debug("state changed",
				slog.String("machine_id", e.Machine.String()),
				slog.String("state", e.State.State))
		}
	}
}
