package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type ProductSize string

const (
	SizeSmall  ProductSize = "SMALL"
	SizeMedium ProductSize = "MEDIUM"
	SizeLarge  ProductSize = "LARGE"
)

const DateLayout = "2006-01-02"

// Date 是 DATE 列，JSON 形如 "2026-10-19"
type Date struct {
	datatypes.Date
}

func NewDate(y int, m time.Month, d int) Date {
	return Date{datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))}
}

func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, want %s", s, DateLayout)
	}
	return Date{datatypes.Date(t)}, nil
}

func (d Date) Time() time.Time { return time.Time(d.Date) }

func (d Date) IsZero() bool { return d.Time().IsZero() }

func (d Date) String() string { return d.Time().Format(DateLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("invalid date: %w", err)
	}
	// 兼容带时间的写法，只保留日期部分
	if len(s) > len(DateLayout) {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			*d = NewDate(t.Date())
			return nil
		}
	}
	v, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

type Product struct {
	ID             int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	Category       string      `gorm:"size:255;not null" json:"category"`
	Price          int         `gorm:"not null" json:"price"`
	Cost           int         `gorm:"not null" json:"cost"`
	Name           string      `gorm:"size:255;not null;index" json:"name"`
	Description    string      `gorm:"size:1024;not null" json:"description"`
	Barcode        string      `gorm:"size:64;not null" json:"barcode"`
	ExpirationDate Date        `gorm:"not null" json:"expirationDate"`
	Size           ProductSize `gorm:"size:16;not null" json:"size"`
	IsActive       bool        `gorm:"not null;default:true" json:"isActive"`
	CreatedAt      time.Time   `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time   `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Product) TableName() string { return "products" }

// ProductInput 注册商品的入参
type ProductInput struct {
	Category       string      `json:"category" validate:"notblank"`
	Price          int         `json:"price" validate:"min=0"`
	Cost           int         `json:"cost" validate:"min=0"`
	Name           string      `json:"name" validate:"notblank"`
	Description    string      `json:"description" validate:"notblank,max=1024"`
	Barcode        string      `json:"barcode" validate:"notblank"`
	ExpirationDate Date        `json:"expirationDate" validate:"required"`
	Size           ProductSize `json:"size" validate:"oneof=SMALL MEDIUM LARGE"`
}

// ProductUpdate 只允许改价格和描述
type ProductUpdate struct {
	Price       int    `json:"price" validate:"min=0"`
	Description string `json:"description" validate:"notblank,max=1024"`
}

type ProductRepository interface {
	Create(ctx context.Context, p *Product) error
	// FindByID 不存在时返回 (nil, nil)，不过滤 is_active
	FindByID(ctx context.Context, id int64) (*Product, error)
	Save(ctx context.Context, p *Product) error
	// ListAfter id > cursor，按 id 升序，最多 limit 条，不过滤 is_active
	ListAfter(ctx context.Context, cursor int64, limit int) ([]Product, error)
	SearchByName(ctx context.Context, substr string) ([]Product, error)
	SearchByNamePattern(ctx context.Context, pattern string) ([]Product, error)
	// Transaction 在同一个事务里执行 fn，fn 里必须使用传入的 repo
	Transaction(ctx context.Context, fn func(repo ProductRepository) error) error
}
