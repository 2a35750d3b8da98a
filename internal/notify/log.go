package notify

import (
	"context"
	"log/slog"

	"github.com/izharus/re-backup/internal/logging"
)

// LogNotifier writes failure events to the structured log. It is the
// default sink and is always present, so every failure leaves a trace
// even when no external alerting is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a log sink. A nil logger uses the default.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs the event at a level matching its severity. It never fails.
func (n *LogNotifier) Notify(ctx context.Context, event Event) error {
	args := []any{
		logging.Operation(string(event.Op)),
		logging.Path(event.Path),
		logging.Err(event.Err),
	}
	if event.Severity == SeverityWarning {
		n.logger.WarnContext(ctx, "sync failure", args...)
	} else {
		n.logger.ErrorContext(ctx, "sync failure", args...)
	}
	return nil
}
