package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"merchant-api/internal/core/auth"
	resp "merchant-api/internal/transport/http/response"
)

var authFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "auth_failures_total", Help: "Requests rejected by the access filter"},
	[]string{"reason"},
)

func init() { prometheus.MustRegister(authFailures) }

// AuthJWT 全局访问过滤。exempt 里的路由模板（c.FullPath()）不校验 token。
// 校验通过后 subject 同时写入 gin.Context 和 request context。
func AuthJWT(j *auth.JWTer, exempt ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(exempt))
	for _, p := range exempt {
		skip[p] = struct{}{}
	}
	return func(c *gin.Context) {
		if _, ok := skip[c.FullPath()]; ok {
			c.Next()
			return
		}
		tok, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			authFailures.WithLabelValues("missing").Inc()
			resp.Abort(c, resp.CodeUnauthorized, "missing token")
			return
		}
		claims, err := j.Parse(tok)
		if err != nil {
			authFailures.WithLabelValues("invalid").Inc()
			resp.Abort(c, resp.CodeUnauthorized, "invalid token")
			return
		}
		c.Set(auth.GinKeySubject, claims.Subject)
		c.Request = c.Request.WithContext(auth.WithSubject(c.Request.Context(), claims.Subject))
		c.Next()
	}
}
