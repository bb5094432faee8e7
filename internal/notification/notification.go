package notification

import (
	"context"
	"log/slog"
)

const (
	KindPaymentCreated = "payment.created"
	KindPaymentUpdated = "payment.updated"
	KindPaymentDeleted = "payment.deleted"
	KindGatewayCreated = "gateway.created"
	KindGatewayDeleted = "gateway.deleted"
)

// Message describes a notification payload.
type Message struct {
	Kind        string
	Destination string
	Subject     string
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the structured logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(ctx context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.InfoContext(ctx, "notification",
		slog.String("kind", message.Kind),
		slog.String("destination", message.Destination),
		slog.String("subject", message.Subject),
	)
	return nil
}

// Recorder keeps every message it is sent. Useful for tests.
type Recorder struct {
	Messages []Message
}

// Send implements Notifier.
func (r *Recorder) Send(_ context.Context, message Message) error {
	r.Messages = append(r.Messages, message)
	return nil
}
