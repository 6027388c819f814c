package repository

import (
	"context"
	"errors"
	"strings"

	"evisa/internal/domain"

	"gorm.io/gorm"
)

var (
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicatePassport = errors.New("passport number already registered")
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	u.Email = normalizeEmail(u.Email)
	u.PassportNumber = strings.TrimSpace(u.PassportNumber)
	if u.Role == "" {
		u.Role = domain.RoleUser
	}

	err := r.db.WithContext(ctx).Create(u).Error
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		field := strings.ToLower(uniqueField(err))
		switch {
		case strings.Contains(field, "passport"):
			return ErrDuplicatePassport
		case strings.Contains(field, "email"):
			return ErrDuplicateEmail
		}
	}
	return translate(err)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", normalizeEmail(email)).
		First(&u).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserRepository) GetByPassportNumber(ctx context.Context, passport string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).
		Where("passport_number = ?", strings.TrimSpace(passport)).
		First(&u).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// GetByIDs returns the users found for ids keyed by id. Missing ids are skipped.
func (r *UserRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*domain.User, error) {
	out := make(map[int64]*domain.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var users []domain.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out, nil
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	u.Email = normalizeEmail(u.Email)
	err := r.db.WithContext(ctx).Save(u).Error
	if err != nil && isUniqueViolation(err) {
		if strings.Contains(strings.ToLower(uniqueField(err)), "passport") {
			return ErrDuplicatePassport
		}
		return ErrDuplicateEmail
	}
	return translate(err)
}

// UpdateProfilePhoto sets only the photo column.
func (r *UserRepository) UpdateProfilePhoto(ctx context.Context, userID int64, key string) error {
	res := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", userID).
		Update("profile_photo", key)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
