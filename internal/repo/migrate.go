package repo

import (
	"gorm.io/gorm"

	"biotrack/internal/domain"
)

// Migrate creates or updates the users and measures tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.User{}, &domain.Measure{})
}

var (
	_ domain.UserRepository    = (*UserRepo)(nil)
	_ domain.MeasureRepository = (*MeasureRepo)(nil)
)
