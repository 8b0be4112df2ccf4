// Package notification delivers operator email for billing events.
package notification

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"subcycle/internal/domain/shared/events"
	"subcycle/internal/domain/subscription"
	sharedConfig "subcycle/internal/shared/config"
	"subcycle/internal/shared/logger"
)

// EmailListener sends an email when billing events that usually need a
// human land: failed payments and failed renewal-order creation are the
// interesting ones; completed renewals are informational.
type EmailListener struct {
	cfg    *sharedConfig.EmailConfig
	dialer *gomail.Dialer
	to     string
	logger logger.Interface
}

func NewEmailListener(cfg *sharedConfig.EmailConfig, to string, log logger.Interface) *EmailListener {
	return &EmailListener{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		to:     to,
		logger: log.Named("email-listener"),
	}
}

// Register subscribes the listener to the billing events it reports on.
func (l *EmailListener) Register(subscriber events.EventSubscriber) error {
	handlers := map[string]func(events.DomainEvent) error{
		"subscription.payment_failed":           l.onPaymentFailed,
		"subscription.renewal_payment_complete": l.onRenewalComplete,
	}
	for eventType, handler := range handlers {
		if err := subscriber.Subscribe(eventType, events.NewSimpleEventHandler(eventType, handler)); err != nil {
			return err
		}
	}
	return nil
}

func (l *EmailListener) onPaymentFailed(event events.DomainEvent) error {
	e, ok := event.(*subscription.PaymentFailedEvent)
	if !ok {
		return nil
	}
	subject := fmt.Sprintf("Payment failed for subscription #%d", e.SubscriptionID)
	body := fmt.Sprintf(
		"A payment against subscription #%d failed (order #%d). The subscription is now %s.",
		e.SubscriptionID, e.OrderID, e.NewStatus)
	return l.send(subject, body)
}

func (l *EmailListener) onRenewalComplete(event events.DomainEvent) error {
	e, ok := event.(*subscription.RenewalPaymentCompleteEvent)
	if !ok {
		return nil
	}
	subject := fmt.Sprintf("Renewal payment received for subscription #%d", e.SubscriptionID)
	body := fmt.Sprintf(
		"Renewal order #%d for subscription #%d has been paid.",
		e.OrderID, e.SubscriptionID)
	return l.send(subject, body)
}

func (l *EmailListener) send(subject, body string) error {
	if !l.cfg.Enabled || l.to == "" {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", l.cfg.From)
	m.SetHeader("To", l.to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := l.dialer.DialAndSend(m); err != nil {
		l.logger.Errorw("failed to send notification email",
			"subject", subject, "error", err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
