package notification

import (
	"context"
	"log/slog"

	"github.com/airbounty/airbounty/internal/reportstore"
)

// Message describes a one-time-code delivery request.
type Message struct {
	Email string
	Phone string
	Code  string
}

// Notifier delivers one-time codes to the contact channel. Delivery is
// fire-and-forget: the session flow never fails on a delivery error.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// StoreNotifier forwards codes through the report store's send_otp hook.
type StoreNotifier struct {
	store reportstore.Store
}

// NewStoreNotifier constructs a store-backed notifier.
func NewStoreNotifier(store reportstore.Store) *StoreNotifier {
	return &StoreNotifier{store: store}
}

// Send posts the send_otp action envelope.
func (n *StoreNotifier) Send(ctx context.Context, message Message) error {
	return n.store.SendOTP(ctx, message.Email, message.Phone, message.Code)
}

// LoggerNotifier is a stub implementation that writes deliveries to the
// logger. Used in dev mode, mirroring the original client's mock display.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the delivery request to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("otp delivery", "email", message.Email, "phone", message.Phone, "code", message.Code)
	return nil
}
