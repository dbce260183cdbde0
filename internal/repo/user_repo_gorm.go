package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"biotrack/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Save inserts when u.ID is zero, otherwise writes every column.
func (r *UserRepo) Save(ctx context.Context, u *domain.User) error {
	if u.ID == 0 {
		return r.db.WithContext(ctx).Create(u).Error
	}
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *UserRepo) DeleteByID(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{}).Error
}

// DeleteWithMeasures removes the user and all of its measures in one transaction.
func (r *UserRepo) DeleteWithMeasures(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&domain.Measure{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.User{}).Error
	})
}

func (r *UserRepo) ExistsByID(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Limit(1).Count(&n).Error
	return n > 0, err
}

func (r *UserRepo) FindAll(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := r.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepo) FindWithoutMeasures(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	sub := r.db.Model(&domain.Measure{}).Select("1").Where("measures.user_id = users.id")
	err := r.db.WithContext(ctx).
		Where("NOT EXISTS (?)", sub).
		Order("id").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepo) Page(ctx context.Context, offset, limit int, query string) ([]domain.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.User{})
	if s := strings.TrimSpace(query); s != "" {
		like := "%" + s + "%"
		q = q.Where("email LIKE ? OR name LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []domain.User
	if err := q.Order("created_at DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
