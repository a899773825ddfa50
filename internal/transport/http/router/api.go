package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"merchant-api/internal/core/auth"
	"merchant-api/internal/core/config"
	"merchant-api/internal/core/server"
	"merchant-api/internal/transport/http/handler"
	httpez "merchant-api/internal/transport/http/ez"
	mdw "merchant-api/internal/transport/http/middleware"
	resp "merchant-api/internal/transport/http/response"
)

const (
	PathRegister = "/api/users/register"
	PathLogin    = "/api/auth/login"
	PathHealth   = "/health"
	PathMetrics  = "/metrics"
)

type Deps struct {
	Log      *zap.Logger
	JWT      *auth.JWTer
	Accounts handler.AccountService
	Products handler.ProductService
	Limits   config.Limits

	// Health 为 nil 时 /health 直接返回 ok
	Health func(ctx context.Context) error
}

func NewAPIEngine(d Deps) *gin.Engine {
	l := d.Log
	if l == nil {
		l = zap.NewNop()
	}
	lim := d.Limits

	// 中间件
	r := server.NewEngine(
		mdw.Recovery(l),
		mdw.RequestID(),
		mdw.RateLimit(rate.Limit(lim.RPS), lim.Burst),
		mdw.ConcurrencyLimit(lim.MaxConcurrent),
		mdw.MaxBodyBytes(lim.MaxBodyBytes),
		mdw.Timeout(time.Duration(lim.TimeoutSec)*time.Second),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)
	// 除白名单外全部要求 token，未知路由也先过鉴权
	r.Use(mdw.AuthJWT(d.JWT, PathRegister, PathLogin, PathHealth, PathMetrics))

	// 健康检查
	r.GET(PathHealth, func(c *gin.Context) {
		if d.Health != nil {
			if err := d.Health(c.Request.Context()); err != nil {
				l.Warn("health check failed", zap.Error(err))
				resp.Abort(c, resp.CodeUnavailable, err.Error())
				return
			}
		}
		c.JSON(http.StatusOK, resp.OK("", gin.H{"ok": 1}))
	})
	r.GET(PathMetrics, gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// 登录/注册按 IP 单独限速
	public := api.Group("", mdw.RateLimitPerIP(rate.Limit(lim.LoginRPS), lim.LoginBurst))
	handler.MountAccountActions(httpez.New(public, l), d.Accounts)
	handler.MountProductActions(httpez.New(api, l), d.Products)

	r.NoRoute(func(c *gin.Context) {
		resp.Abort(c, resp.CodeNotFound, "")
	})
	return r
}
