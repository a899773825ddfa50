package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"merchant-api/internal/domain"
	httpez "merchant-api/internal/transport/http/ez"
	resp "merchant-api/internal/transport/http/response"
)

type ProductService interface {
	Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, cursor *int64, size int) ([]domain.Product, error)
	Search(ctx context.Context, query string) ([]domain.Product, error)
	Update(ctx context.Context, id int64, in domain.ProductUpdate) (*domain.Product, error)
	Deactivate(ctx context.Context, id int64) (bool, error)
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, httpez.BadRequest("invalid id: " + c.Param("id"))
	}
	return id, nil
}

// MountProductActions 挂载 /products/*，调用方负责把 e 放在鉴权之后
func MountProductActions(e httpez.EZ, svc ProductService) {
	httpez.RegisterAction[domain.ProductInput, *domain.Product](e, httpez.Action[domain.ProductInput, *domain.Product]{
		Method:  http.MethodPost,
		Path:    "/products/register",
		Binder:  httpez.BindJSON,
		Auth:    true,
		Code:    resp.CodeCreated,
		Message: "상품이 성공적으로 등록되었습니다.",
		Handler: func(c *gin.Context, in *domain.ProductInput) (*domain.Product, error) {
			return svc.Create(c.Request.Context(), *in)
		},
	})

	type listQ struct {
		Cursor *int64 `form:"cursor"`
		Size   int    `form:"size,default=10" binding:"min=1,max=100"`
	}
	httpez.RegisterAction[listQ, []domain.Product](e, httpez.Action[listQ, []domain.Product]{
		Method:  http.MethodGet,
		Path:    "/products/list",
		Binder:  httpez.BindQuery,
		Auth:    true,
		Message: "상품들이 조회되었습니다.",
		Handler: func(c *gin.Context, in *listQ) ([]domain.Product, error) {
			return svc.List(c.Request.Context(), in.Cursor, in.Size)
		},
	})

	type searchQ struct {
		Name string `form:"name" binding:"required"`
	}
	httpez.RegisterAction[searchQ, []domain.Product](e, httpez.Action[searchQ, []domain.Product]{
		Method:  http.MethodGet,
		Path:    "/products/search",
		Binder:  httpez.BindQuery,
		Auth:    true,
		Message: "해당 상품이 검색되었습니다.",
		Handler: func(c *gin.Context, in *searchQ) ([]domain.Product, error) {
			return svc.Search(c.Request.Context(), in.Name)
		},
	})

	// 不存在或已下架时 data 为 null
	httpez.RegisterAction[struct{}, *domain.Product](e, httpez.Action[struct{}, *domain.Product]{
		Method:  http.MethodGet,
		Path:    "/products/:id",
		Binder:  httpez.BindNone,
		Auth:    true,
		Message: "상품이 조회되었습니다.",
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Product, error) {
			id, err := pathID(c)
			if err != nil {
				return nil, err
			}
			return svc.GetByID(c.Request.Context(), id)
		},
	})

	httpez.RegisterAction[domain.ProductUpdate, *domain.Product](e, httpez.Action[domain.ProductUpdate, *domain.Product]{
		Method:  http.MethodPatch,
		Path:    "/products/:id",
		Binder:  httpez.BindJSON,
		Auth:    true,
		Message: "상품이 수정되었습니다.",
		Handler: func(c *gin.Context, in *domain.ProductUpdate) (*domain.Product, error) {
			id, err := pathID(c)
			if err != nil {
				return nil, err
			}
			return svc.Update(c.Request.Context(), id, *in)
		},
	})

	httpez.RegisterAction[struct{}, any](e, httpez.Action[struct{}, any]{
		Method:  http.MethodDelete,
		Path:    "/products/:id",
		Binder:  httpez.BindNone,
		Auth:    true,
		Message: "상품이 삭제되었습니다.",
		Handler: func(c *gin.Context, _ *struct{}) (any, error) {
			id, err := pathID(c)
			if err != nil {
				return nil, err
			}
			ok, err := svc.Deactivate(c.Request.Context(), id)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, httpez.NotFound(httpez.MsgProductNotFound)
			}
			return nil, nil
		},
	})
}
