package notification

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"evisa/internal/domain"
)

const (
	senderName = "Thailand eVisa Portal"
	dateLayout = "Jan 2, 2006"
)

var ErrNoRecipient = errors.New("recipient has no email address")

// Dispatcher renders the portal e-mails and hands them to a Transport.
type Dispatcher struct {
	transport Transport
	from      string
	clientURL string
	now       func() time.Time
}

func NewDispatcher(transport Transport, from, clientURL string) *Dispatcher {
	return &Dispatcher{
		transport: transport,
		from:      from,
		clientURL: clientURL,
		now:       time.Now,
	}
}

func (d *Dispatcher) fromHeader() string {
	if d.from == "" {
		return senderName
	}
	return fmt.Sprintf("%s <%s>", senderName, d.from)
}

func (d *Dispatcher) render(kind, tmpl, to, subject string, data mailData) (Message, error) {
	if to == "" {
		return Message{Kind: kind}, ErrNoRecipient
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, tmpl, data); err != nil {
		return Message{Kind: kind}, fmt.Errorf("render %s mail: %w", kind, err)
	}
	return Message{
		Kind:    kind,
		From:    d.fromHeader(),
		To:      to,
		Subject: subject,
		HTML:    buf.String(),
	}, nil
}

func (d *Dispatcher) deliver(ctx context.Context, msg Message, err error) error {
	if err != nil {
		return err
	}
	return d.transport.Send(ctx, msg)
}

func (d *Dispatcher) Welcome(user *domain.User) (Message, error) {
	return d.render(KindWelcome, "welcome", user.Email, "Welcome to Thailand eVisa Portal", mailData{
		Name:      user.FullName,
		ClientURL: d.clientURL,
	})
}

func (d *Dispatcher) ApplicationSubmitted(user *domain.User, app *domain.Application) (Message, error) {
	at := d.now()
	if app.SubmittedAt != nil {
		at = *app.SubmittedAt
	}
	return d.render(KindSubmitted, "submitted", user.Email, "Application Submitted - "+app.BookingNumber, mailData{
		Name:          user.FullName,
		BookingNumber: app.BookingNumber,
		VisaType:      string(app.VisaType),
		Date:          at.Format(dateLayout),
	})
}

func (d *Dispatcher) StatusUpdate(user *domain.User, app *domain.Application, status domain.ApplicationStatus) (Message, error) {
	return d.render(KindStatus, "status", user.Email, "Status Update - "+app.BookingNumber, mailData{
		Name:          user.FullName,
		BookingNumber: app.BookingNumber,
		Status:        string(status),
		Date:          d.now().Format(dateLayout),
	})
}

func (d *Dispatcher) Approval(user *domain.User, app *domain.Application) (Message, error) {
	at := d.now()
	if app.ApprovedAt != nil {
		at = *app.ApprovedAt
	}
	return d.render(KindApproved, "approved", user.Email, "Visa Approved - "+app.BookingNumber, mailData{
		Name:          user.FullName,
		BookingNumber: app.BookingNumber,
		VisaType:      string(app.VisaType),
		Date:          at.Format(dateLayout),
	})
}

func (d *Dispatcher) PaymentConfirmation(user *domain.User, app *domain.Application, p *domain.Payment) (Message, error) {
	at := p.CreatedAt
	if at.IsZero() {
		at = d.now()
	}
	return d.render(KindPayment, "payment", user.Email, "Payment Received - "+app.BookingNumber, mailData{
		Name:          user.FullName,
		BookingNumber: app.BookingNumber,
		TransactionID: p.TransactionID,
		Amount:        p.Amount.StringFixed(2),
		Currency:      p.Currency,
		Date:          at.Format(dateLayout),
	})
}

func (d *Dispatcher) SendWelcome(ctx context.Context, user *domain.User) error {
	msg, err := d.Welcome(user)
	return d.deliver(ctx, msg, err)
}

func (d *Dispatcher) SendApplicationSubmitted(ctx context.Context, user *domain.User, app *domain.Application) error {
	msg, err := d.ApplicationSubmitted(user, app)
	return d.deliver(ctx, msg, err)
}

func (d *Dispatcher) SendStatusUpdate(ctx context.Context, user *domain.User, app *domain.Application, status domain.ApplicationStatus) error {
	msg, err := d.StatusUpdate(user, app, status)
	return d.deliver(ctx, msg, err)
}

func (d *Dispatcher) SendApproval(ctx context.Context, user *domain.User, app *domain.Application) error {
	msg, err := d.Approval(user, app)
	return d.deliver(ctx, msg, err)
}

func (d *Dispatcher) SendPaymentConfirmation(ctx context.Context, user *domain.User, app *domain.Application, p *domain.Payment) error {
	msg, err := d.PaymentConfirmation(user, app, p)
	return d.deliver(ctx, msg, err)
}

// Send delivers an already rendered message.
func (d *Dispatcher) Send(ctx context.Context, msg Message) error {
	return d.transport.Send(ctx, msg)
}
