package notification

import (
	"context"
	"fmt"

	"evisa/internal/config"

	"go.uber.org/zap"
)

// Kinds label messages in logs, metrics and queued mail commands.
const (
	KindWelcome   = "welcome"
	KindSubmitted = "submitted"
	KindStatus    = "status_update"
	KindApproved  = "approved"
	KindPayment   = "payment"
)

// Message is a rendered e-mail ready for delivery.
type Message struct {
	Kind    string `json:"kind"`
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Transport delivers a rendered message.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// LogTransport only logs messages. Used in development.
type LogTransport struct {
	log *zap.Logger
}

func NewLogTransport(log *zap.Logger) *LogTransport {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogTransport{log: log}
}

func (t *LogTransport) Send(_ context.Context, msg Message) error {
	t.log.Info("mail (log transport)",
		zap.String("kind", msg.Kind),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("html_bytes", len(msg.HTML)),
	)
	return nil
}

// NewTransport builds the transport selected by cfg. The returned close
// function releases broker connections and is safe to call once.
func NewTransport(cfg config.MailConfig, log *zap.Logger) (Transport, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Transport {
	case "", "log":
		return NewLogTransport(log), noop, nil
	case "smtp":
		return NewSMTPTransport(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword), noop, nil
	case "kafka":
		t := NewKafkaTransport(cfg.KafkaBrokers, cfg.KafkaTopic)
		return t, t.Close, nil
	}
	return nil, noop, fmt.Errorf("unknown mail transport %q", cfg.Transport)
}
