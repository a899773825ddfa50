package repo

import (
	"gorm.io/gorm"

	"merchant-api/internal/domain"
)

// AutoMigrate 建表 / 补列，不删列
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.Account{}, &domain.Product{})
}
