package domain

import "context"

// Find* methods return (nil, nil) when the row does not exist.
type UserRepository interface {
	FindByID(ctx context.Context, id uint) (*User, error)
	Save(ctx context.Context, u *User) error
	DeleteByID(ctx context.Context, id uint) error
	DeleteWithMeasures(ctx context.Context, id uint) error
	ExistsByID(ctx context.Context, id uint) (bool, error)
	FindAll(ctx context.Context) ([]User, error)
	FindWithoutMeasures(ctx context.Context) ([]User, error)
	Page(ctx context.Context, offset, limit int, query string) ([]User, int64, error)
}

type MeasureRepository interface {
	FindByID(ctx context.Context, id uint) (*Measure, error)
	Save(ctx context.Context, m *Measure) error
	DeleteByID(ctx context.Context, id uint) error
	ExistsByID(ctx context.Context, id uint) (bool, error)
	ListByUser(ctx context.Context, userID uint) ([]Measure, error)
	ListByUserOrderByDateDesc(ctx context.Context, userID uint) ([]Measure, error)
	FindLatestByUser(ctx context.Context, userID uint) (*Measure, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
	DeleteByUser(ctx context.Context, userID uint) (int64, error)
}
