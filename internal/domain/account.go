package domain

import (
	"context"
	"time"
)

type Account struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	MobileNumber string    `gorm:"uniqueIndex;size:20;not null" json:"mobileNumber"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Account) TableName() string { return "accounts" }

type AccountRepository interface {
	Create(ctx context.Context, a *Account) error
	// FindByMobileNumber 不存在时返回 (nil, nil)
	FindByMobileNumber(ctx context.Context, mobileNumber string) (*Account, error)
}
