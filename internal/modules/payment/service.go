package payment

import (
	"context"
	"errors"
	"strings"
	"time"

	"evisa/internal/domain"
	"evisa/internal/repository"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

const defaultCurrency = "USD"

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrForbidden           = errors.New("not authorized")
	ErrAlreadyPaid         = errors.New("application is already paid")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidMethod       = errors.New("invalid payment method")
)

type Service struct {
	payments paymentRepo
	apps     applicationReader
	users    userReader
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
	newTxnID func() string
}

func NewService(payments paymentRepo, apps applicationReader, users userReader, notifier Notifier, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		payments: payments,
		apps:     apps,
		users:    users,
		notifier: notifier,
		log:      log,
		now:      time.Now,
		newTxnID: func() string { return "TXN-" + ulid.Make().String() },
	}
}

func (s *Service) load(ctx context.Context, caller domain.Caller, appID int64, action domain.Action) (*domain.Application, error) {
	app, err := s.apps.GetByID(ctx, appID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	if !domain.Can(caller.Role, caller.Owns(app.UserID), action) {
		return nil, ErrForbidden
	}
	return app, nil
}

// Record stores a completed payment and marks the application paid in the
// same transaction, then mails a confirmation to the applicant.
func (s *Service) Record(ctx context.Context, caller domain.Caller, appID int64, req RecordRequest) (*domain.Payment, error) {
	app, err := s.load(ctx, caller, appID, domain.ActionReview)
	if err != nil {
		return nil, err
	}
	if app.PaymentStatus == domain.PaymentPaid {
		return nil, ErrAlreadyPaid
	}

	method := domain.PaymentMethod(req.PaymentMethod)
	if !method.IsValid() {
		return nil, ErrInvalidMethod
	}

	amount := app.PaymentAmount
	if req.Amount != nil {
		amount = *req.Amount
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	now := s.now()
	p := &domain.Payment{
		ApplicationID: app.ID,
		UserID:        app.UserID,
		Amount:        amount,
		Currency:      currency,
		Method:        method,
		TransactionID: s.newTxnID(),
		Status:        domain.TransactionCompleted,
		CardLast4:     req.CardLast4,
		CardBrand:     req.CardBrand,
		PayerEmail:    req.PayerEmail,
		ReceiptURL:    req.ReceiptURL,
		CreatedAt:     now,
	}

	app.PaymentStatus = domain.PaymentPaid
	app.PaymentAmount = amount
	app.PaymentID = p.TransactionID
	app.PaymentDate = &now

	if err := s.payments.CreateAndMarkPaid(ctx, p, app); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrApplicationNotFound
		case errors.Is(err, repository.ErrAlreadyPaid):
			return nil, ErrAlreadyPaid
		}
		return nil, err
	}

	s.log.Info("payment recorded",
		zap.Int64("application_id", app.ID),
		zap.String("transaction_id", p.TransactionID),
		zap.String("amount", amount.StringFixed(2)),
		zap.Int64("by", caller.UserID),
	)

	if s.notifier != nil {
		if user, err := s.users.GetByID(ctx, app.UserID); err == nil {
			s.notifier.PaymentReceived(user, app, p)
		} else {
			s.log.Warn("payment owner lookup failed", zap.Int64("application_id", app.ID), zap.Error(err))
		}
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, caller domain.Caller, appID int64) ([]domain.Payment, error) {
	if _, err := s.load(ctx, caller, appID, domain.ActionViewPayments); err != nil {
		return nil, err
	}
	return s.payments.ListByApplication(ctx, appID)
}
