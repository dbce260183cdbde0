package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"biotrack/internal/domain"
)

type MeasureRepo struct{ db *gorm.DB }

func NewMeasureRepo(db *gorm.DB) *MeasureRepo { return &MeasureRepo{db: db} }

func (r *MeasureRepo) FindByID(ctx context.Context, id uint) (*domain.Measure, error) {
	var m domain.Measure
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Save writes every column, nil optionals included, so updates are full replacements.
func (r *MeasureRepo) Save(ctx context.Context, m *domain.Measure) error {
	if m.ID == 0 {
		return r.db.WithContext(ctx).Omit("User").Create(m).Error
	}
	return r.db.WithContext(ctx).Omit("User").Save(m).Error
}

func (r *MeasureRepo) DeleteByID(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Measure{}).Error
}

func (r *MeasureRepo) ExistsByID(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Measure{}).Where("id = ?", id).Limit(1).Count(&n).Error
	return n > 0, err
}

func (r *MeasureRepo) ListByUser(ctx context.Context, userID uint) ([]domain.Measure, error) {
	var ms []domain.Measure
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&ms).Error; err != nil {
		return nil, err
	}
	return ms, nil
}

func (r *MeasureRepo) ListByUserOrderByDateDesc(ctx context.Context, userID uint) ([]domain.Measure, error) {
	var ms []domain.Measure
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("measurement_date DESC").
		Order("id DESC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return ms, nil
}

// FindLatestByUser breaks date ties by the highest id, matching domain.LatestMeasure.
func (r *MeasureRepo) FindLatestByUser(ctx context.Context, userID uint) (*domain.Measure, error) {
	var m domain.Measure
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("measurement_date DESC").
		Order("id DESC").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MeasureRepo) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Measure{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *MeasureRepo) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.Measure{})
	return res.RowsAffected, res.Error
}
