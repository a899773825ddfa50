package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"merchant-api/internal/domain"
	httpez "merchant-api/internal/transport/http/ez"
)

type AccountService interface {
	Register(ctx context.Context, mobileNumber, password string) (*domain.Account, error)
	Login(ctx context.Context, mobileNumber, password string) (string, error)
}

type credentialsIn struct {
	MobileNumber string `json:"mobileNumber"`
	Password     string `json:"password"`
}

// MountAccountActions 挂载 /users/register 与 /auth/login，均不需要 token
func MountAccountActions(e httpez.EZ, svc AccountService) {
	httpez.RegisterAction[credentialsIn, any](e, httpez.Action[credentialsIn, any]{
		Method:  http.MethodPost,
		Path:    "/users/register",
		Binder:  httpez.BindJSON,
		Message: "사장님 등록이 완료되었습니다.",
		Handler: func(c *gin.Context, in *credentialsIn) (any, error) {
			if _, err := svc.Register(c.Request.Context(), in.MobileNumber, in.Password); err != nil {
				return nil, err
			}
			return nil, nil
		},
	})

	// 登录失败统一 400，不区分用户不存在和密码错误
	httpez.RegisterAction[credentialsIn, string](e, httpez.Action[credentialsIn, string]{
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Binder:      httpez.BindJSON,
		Message:     "로그인 성공.",
		BindFailMsg: httpez.MsgInvalidCredentials,
		Handler: func(c *gin.Context, in *credentialsIn) (string, error) {
			return svc.Login(c.Request.Context(), in.MobileNumber, in.Password)
		},
	})
}
