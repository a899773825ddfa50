package service

import (
	"context"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"merchant-api/internal/core/cache"
	"merchant-api/internal/domain"
	"merchant-api/pkg/hangul"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type SearchMode string

const (
	SearchAuto    SearchMode = "auto"    // 含初声时走正则，否则 LIKE
	SearchLike    SearchMode = "like"    // name LIKE %q%
	SearchInitial SearchMode = "initial" // 总是走初声正则
)

type ProductOptions struct {
	SearchMode SearchMode
	Cache      *cache.Cache // nil 表示不缓存
	CacheTTL   time.Duration
	Logger     *zap.Logger
}

type ProductService struct {
	repo domain.ProductRepository
	opt  ProductOptions
	log  *zap.Logger
	v    *validator.Validate
}

func NewProductService(repo domain.ProductRepository, opt ProductOptions) *ProductService {
	if opt.SearchMode == "" {
		opt.SearchMode = SearchAuto
	}
	if opt.CacheTTL <= 0 {
		opt.CacheTTL = 5 * time.Minute
	}
	l := opt.Logger
	if l == nil {
		l = zap.NewNop()
	}
	return &ProductService{repo: repo, opt: opt, log: l, v: newValidator()}
}

func cacheKey(id int64) string { return "product:" + strconv.FormatInt(id, 10) }

func (s *ProductService) Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	if err := validateStruct(s.v, in); err != nil {
		return nil, err
	}
	p := &domain.Product{
		Category:       in.Category,
		Price:          in.Price,
		Cost:           in.Cost,
		Name:           in.Name,
		Description:    in.Description,
		Barcode:        in.Barcode,
		ExpirationDate: in.ExpirationDate,
		Size:           in.Size,
		IsActive:       true,
	}
	err := s.repo.Transaction(ctx, func(tx domain.ProductRepository) error {
		return tx.Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetByID 不存在或已下架都返回 (nil, nil)
func (s *ProductService) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	if s.opt.Cache == nil {
		return s.findActive(ctx, id)
	}
	return cache.GetOrLoadJSON(s.opt.Cache, ctx, cacheKey(id), s.opt.CacheTTL, func(ctx context.Context) (*domain.Product, error) {
		return s.findActive(ctx, id)
	})
}

func (s *ProductService) findActive(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil || p == nil || !p.IsActive {
		return nil, err
	}
	return p, nil
}

// List 取 id > cursor 的一页后再过滤下架商品，所以一页可能不足 size 条
func (s *ProductService) List(ctx context.Context, cursor *int64, size int) ([]domain.Product, error) {
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	var after int64
	if cursor != nil {
		after = *cursor
	}
	rows, err := s.repo.ListAfter(ctx, after, size)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(rows))
	for _, p := range rows {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

// Search 按名称搜索。不过滤 is_active，与 List/GetByID 不一致。
func (s *ProductService) Search(ctx context.Context, query string) ([]domain.Product, error) {
	var (
		rows []domain.Product
		err  error
	)
	if s.useInitialSearch(query) {
		rows, err = s.repo.SearchByNamePattern(ctx, hangul.InitialPattern(query))
	} else {
		rows, err = s.repo.SearchByName(ctx, query)
	}
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.Product{}
	}
	return rows, nil
}

func (s *ProductService) useInitialSearch(query string) bool {
	switch s.opt.SearchMode {
	case SearchInitial:
		return true
	case SearchLike:
		return false
	default:
		return hangul.HasInitial(query)
	}
}

// Update 只改 price / description；不存在返回 domain.ErrProductNotFound
func (s *ProductService) Update(ctx context.Context, id int64, in domain.ProductUpdate) (*domain.Product, error) {
	if err := validateStruct(s.v, in); err != nil {
		return nil, err
	}
	var updated *domain.Product
	err := s.repo.Transaction(ctx, func(tx domain.ProductRepository) error {
		p, err := tx.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrProductNotFound
		}
		p.Price = in.Price
		p.Description = in.Description
		if err := tx.Save(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.refresh(ctx, id, updated)
	return updated, nil
}

// Deactivate 软删除。已下架的再次调用仍返回 true。
func (s *ProductService) Deactivate(ctx context.Context, id int64) (bool, error) {
	var found *domain.Product
	err := s.repo.Transaction(ctx, func(tx domain.ProductRepository) error {
		p, err := tx.FindByID(ctx, id)
		if err != nil || p == nil {
			return err
		}
		found = p
		if !p.IsActive {
			return nil
		}
		p.IsActive = false
		return tx.Save(ctx, p)
	})
	if err != nil {
		return false, err
	}
	if found == nil {
		return false, nil
	}
	s.refresh(ctx, id, nil)
	return true, nil
}

// refresh 提交后覆盖缓存：在售写入新值，下架写墓碑。
// 覆盖而不是删除，配合 GetOrLoad 的 SETNX，并发回源拿到的旧数据写不进来。
func (s *ProductService) refresh(ctx context.Context, id int64, p *domain.Product) {
	if s.opt.Cache == nil {
		return
	}
	if p != nil && !p.IsActive {
		p = nil
	}
	// 已经提交，请求被取消也要写完
	ctx = context.WithoutCancel(ctx)
	err := cache.SetJSON(s.opt.Cache, ctx, cacheKey(id), s.opt.CacheTTL, p)
	if err == nil {
		return
	}
	// 写不进去就尽量删掉，两者都失败时旧值最多存活一个 TTL
	if derr := s.opt.Cache.Delete(ctx, cacheKey(id)); derr != nil {
		s.log.Error("product cache refresh failed",
			zap.Int64("id", id), zap.Error(err), zap.NamedError("delete_error", derr))
		return
	}
	s.log.Warn("product cache refresh failed, entry deleted", zap.Int64("id", id), zap.Error(err))
}
