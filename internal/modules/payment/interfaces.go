package payment

import (
	"context"

	"evisa/internal/domain"
)

type paymentRepo interface {
	CreateAndMarkPaid(ctx context.Context, p *domain.Payment, app *domain.Application) error
	ListByApplication(ctx context.Context, applicationID int64) ([]domain.Payment, error)
}

type applicationReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Application, error)
}

type userReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Notifier is fire-and-forget.
type Notifier interface {
	PaymentReceived(user *domain.User, app *domain.Application, p *domain.Payment)
}
