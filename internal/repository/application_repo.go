package repository

import (
	"context"
	"strings"

	"evisa/internal/domain"

	"gorm.io/gorm"
)

type ApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// ApplicationFilter drives the staff listing. Page and Limit are expected to
// be normalised by the caller.
type ApplicationFilter struct {
	Status domain.ApplicationStatus
	Search string
	Page   int
	Limit  int
}

type StatusCount struct {
	Status domain.ApplicationStatus `json:"status"`
	Count  int64                    `json:"count"`
}

// Create inserts a new application. A clash on the booking number is
// reported as ErrDuplicate so the caller can retry with a fresh number.
func (r *ApplicationRepository) Create(ctx context.Context, a *domain.Application) error {
	return translate(r.db.WithContext(ctx).Create(a).Error)
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*domain.Application, error) {
	var a domain.Application
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *ApplicationRepository) GetByBookingNumber(ctx context.Context, number string) (*domain.Application, error) {
	var a domain.Application
	err := r.db.WithContext(ctx).
		Where("booking_number = ?", strings.TrimSpace(number)).
		First(&a).Error
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *ApplicationRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Application, error) {
	var apps []domain.Application
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&apps).Error
	return apps, err
}

// Update writes every column of a except the immutable ones.
func (r *ApplicationRepository) Update(ctx context.Context, a *domain.Application) error {
	res := r.db.WithContext(ctx).
		Model(a).
		Select("*").
		Omit("id", "user_id", "booking_number", "created_at").
		Updates(a)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ApplicationRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&domain.Application{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ApplicationRepository) List(ctx context.Context, f ApplicationFilter) ([]domain.Application, int64, error) {
	q := r.filtered(ctx, f)

	var total int64
	if err := q.Session(&gorm.Session{}).Model(&domain.Application{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var apps []domain.Application
	err := q.Order("created_at DESC").
		Order("id DESC").
		Limit(f.Limit).
		Offset((f.Page - 1) * f.Limit).
		Find(&apps).Error
	if err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

func (r *ApplicationRepository) filtered(ctx context.Context, f ApplicationFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&domain.Application{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + escapeLike(strings.ToLower(s)) + "%"
		q = q.Where(
			`LOWER(booking_number) LIKE ? ESCAPE '\' OR LOWER(full_name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\' OR LOWER(passport_number) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern, pattern,
		)
	}
	return q
}

// CountByStatus counts applications in status, or all of them when status is empty.
func (r *ApplicationRepository) CountByStatus(ctx context.Context, status domain.ApplicationStatus) (int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Application{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

func (r *ApplicationRepository) GroupByStatus(ctx context.Context) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.db.WithContext(ctx).
		Model(&domain.Application{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("status").
		Scan(&rows).Error
	return rows, err
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
