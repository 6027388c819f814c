package repository

import (
	"context"
	"errors"

	"evisa/internal/domain"

	"gorm.io/gorm"
)

// ErrAlreadyPaid reports that the application was marked paid by another write.
var ErrAlreadyPaid = errors.New("application already paid")

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *PaymentRepository) GetByTransactionID(ctx context.Context, txnID string) (*domain.Payment, error) {
	var p domain.Payment
	if err := r.db.WithContext(ctx).Where("transaction_id = ?", txnID).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *PaymentRepository) ListByApplication(ctx context.Context, applicationID int64) ([]domain.Payment, error) {
	var out []domain.Payment
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&out).Error
	return out, err
}

// CreateAndMarkPaid stores p and flips the application to Paid in one
// transaction. The flip only applies to an application that is not yet Paid,
// so concurrent recorders cannot both succeed.
func (r *PaymentRepository) CreateAndMarkPaid(ctx context.Context, p *domain.Payment, app *domain.Application) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return translate(err)
		}
		// only payment columns change, so the timeline guard does not apply
		res := tx.Session(&gorm.Session{SkipHooks: true}).
			Model(&domain.Application{}).
			Where("id = ? AND payment_status <> ?", app.ID, domain.PaymentPaid).
			Updates(map[string]interface{}{
				"payment_status": app.PaymentStatus,
				"payment_amount": app.PaymentAmount,
				"payment_id":     app.PaymentID,
				"payment_date":   app.PaymentDate,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&domain.Application{}).Where("id = ?", app.ID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return ErrNotFound
			}
			return ErrAlreadyPaid
		}
		return nil
	})
}
