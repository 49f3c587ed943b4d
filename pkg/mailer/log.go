package mailer

import (
	"context"
	"log/slog"
)

// LogClient writes messages to the structured log instead of sending them.
// Used in development when no relay account is configured.
type LogClient struct {
	logger *slog.Logger
}

// NewLogClient constructs a LogClient. A nil logger uses slog.Default().
func NewLogClient(logger *slog.Logger) *LogClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogClient{logger: logger.With("component", "mailer")}
}

var _ Client = (*LogClient)(nil)

func (l *LogClient) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	l.logger.InfoContext(ctx, "contact email not relayed (log driver)",
		"to", msg.To,
		"reply_to", msg.ReplyTo,
		"subject", msg.Subject,
	)
	return nil
}
