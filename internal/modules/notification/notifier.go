package notification

import (
	"context"
	"sync"
	"time"

	"evisa/internal/domain"

	"go.uber.org/zap"
)

const defaultSendTimeout = 15 * time.Second

type MailRecorder interface {
	MailSent(kind string, ok bool)
}

// Notifier delivers portal notifications in the background. Messages are
// rendered on the caller's goroutine so later mutation of the arguments does
// not leak into the mail; delivery runs detached from the request context.
type Notifier struct {
	dispatcher *Dispatcher
	hub        *Hub
	recorder   MailRecorder
	timeout    time.Duration
	log        *zap.Logger
	wg         sync.WaitGroup
}

func NewNotifier(dispatcher *Dispatcher, hub *Hub, recorder MailRecorder, timeout time.Duration, log *zap.Logger) *Notifier {
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{
		dispatcher: dispatcher,
		hub:        hub,
		recorder:   recorder,
		timeout:    timeout,
		log:        log,
	}
}

func (n *Notifier) Welcome(user *domain.User) {
	n.async(n.dispatcher.Welcome(user))
}

func (n *Notifier) ApplicationSubmitted(user *domain.User, app *domain.Application) {
	n.async(n.dispatcher.ApplicationSubmitted(user, app))
}

// StatusChanged pushes a realtime event to the owner and mails them. Approval
// gets its own mail instead of the generic status update.
func (n *Notifier) StatusChanged(user *domain.User, app *domain.Application) {
	if n.hub != nil {
		n.hub.SendToUser(app.UserID, Event{
			Type: EventApplicationStatus,
			Payload: StatusPayload{
				ApplicationID: app.ID,
				BookingNumber: app.BookingNumber,
				Status:        string(app.Status),
				UpdatedAt:     app.UpdatedAt,
			},
		})
	}

	if app.Status == domain.StatusApproved {
		n.async(n.dispatcher.Approval(user, app))
		return
	}
	n.async(n.dispatcher.StatusUpdate(user, app, app.Status))
}

func (n *Notifier) PaymentReceived(user *domain.User, app *domain.Application, p *domain.Payment) {
	n.async(n.dispatcher.PaymentConfirmation(user, app, p))
}

// Wait blocks until queued deliveries finish.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func (n *Notifier) async(msg Message, err error) {
	if err != nil {
		n.log.Warn("mail not rendered", zap.String("kind", msg.Kind), zap.Error(err))
		n.record(msg.Kind, false)
		return
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		if err := n.dispatcher.Send(ctx, msg); err != nil {
			n.log.Error("mail delivery failed",
				zap.String("kind", msg.Kind),
				zap.String("to", msg.To),
				zap.Error(err),
			)
			n.record(msg.Kind, false)
			return
		}
		n.log.Info("mail sent", zap.String("kind", msg.Kind), zap.String("to", msg.To))
		n.record(msg.Kind, true)
	}()
}

func (n *Notifier) record(kind string, ok bool) {
	if n.recorder != nil {
		n.recorder.MailSent(kind, ok)
	}
}
