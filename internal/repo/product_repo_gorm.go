package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"merchant-api/internal/domain"
)

type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *ProductRepo) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find product %d: %w", id, err)
	}
	return &p, nil
}

func (r *ProductRepo) Save(ctx context.Context, p *domain.Product) error {
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		return fmt.Errorf("save product %d: %w", p.ID, err)
	}
	return nil
}

func (r *ProductRepo) ListAfter(ctx context.Context, cursor int64, limit int) ([]domain.Product, error) {
	ps := make([]domain.Product, 0, limit)
	err := r.db.WithContext(ctx).
		Where("id > ?", cursor).
		Order("id ASC").
		Limit(limit).
		Find(&ps).Error
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return ps, nil
}

// SearchByName name LIKE %substr%，substr 中的 % 和 _ 不转义
func (r *ProductRepo) SearchByName(ctx context.Context, substr string) ([]domain.Product, error) {
	var ps []domain.Product
	err := r.db.WithContext(ctx).
		Where("name LIKE ?", "%"+substr+"%").
		Order("id ASC").
		Find(&ps).Error
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return ps, nil
}

// SearchByNamePattern 正则匹配 name，运算符随方言变化
func (r *ProductRepo) SearchByNamePattern(ctx context.Context, pattern string) ([]domain.Product, error) {
	var ps []domain.Product
	err := r.db.WithContext(ctx).
		Where(regexpClause(r.db.Dialector.Name()), pattern).
		Order("id ASC").
		Find(&ps).Error
	if err != nil {
		return nil, fmt.Errorf("search products by pattern: %w", err)
	}
	return ps, nil
}

func (r *ProductRepo) Transaction(ctx context.Context, fn func(domain.ProductRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ProductRepo{db: tx})
	})
}

func regexpClause(dialect string) string {
	switch dialect {
	case "postgres":
		return "name ~ ?"
	default: // mysql / sqlite（已注册 regexp 函数）
		return "name REGEXP ?"
	}
}
