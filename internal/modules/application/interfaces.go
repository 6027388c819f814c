package application

import (
	"context"

	"evisa/internal/domain"
	"evisa/internal/repository"
)

type ApplicationRepository interface {
	Create(ctx context.Context, a *domain.Application) error
	GetByID(ctx context.Context, id int64) (*domain.Application, error)
	GetByBookingNumber(ctx context.Context, number string) (*domain.Application, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Application, error)
	Update(ctx context.Context, a *domain.Application) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f repository.ApplicationFilter) ([]domain.Application, int64, error)
	CountByStatus(ctx context.Context, status domain.ApplicationStatus) (int64, error)
	GroupByStatus(ctx context.Context) ([]repository.StatusCount, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*domain.User, error)
}

// FileRemover deletes stored document files.
type FileRemover interface {
	Delete(ctx context.Context, key string) error
}

// Notifier is fire-and-forget: calls return immediately and failures are
// only logged by the implementation.
type Notifier interface {
	ApplicationSubmitted(user *domain.User, app *domain.Application)
	StatusChanged(user *domain.User, app *domain.Application)
}

// StatusRecorder counts status transitions.
type StatusRecorder interface {
	StatusChanged(status string)
}
