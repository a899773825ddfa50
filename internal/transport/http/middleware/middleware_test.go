package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"merchant-api/internal/core/auth"
	resp "merchant-api/internal/transport/http/response"
)

func init() { gin.SetMode(gin.TestMode) }

func decode(t *testing.T, w *httptest.ResponseRecorder) resp.Resp {
	t.Helper()
	var out resp.Resp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthJWT(t *testing.T) {
	j := &auth.JWTer{Secret: []byte("test-secret"), TTL: time.Minute}
	r := gin.New()
	r.Use(AuthJWT(j, "/open"))
	r.GET("/open", func(c *gin.Context) { c.String(http.StatusOK, "open") })
	r.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(auth.GinKeySubject)+"|"+auth.SubjectFrom(c.Request.Context()))
	})

	t.Run("Exempt_NoToken", func(t *testing.T) {
		w := do(r, httptest.NewRequest(http.MethodGet, "/open", nil))
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Missing_401", func(t *testing.T) {
		w := do(r, httptest.NewRequest(http.MethodGet, "/me", nil))
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Equal(t, 401, decode(t, w).Meta.Code)
	})

	t.Run("Invalid_401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer nope")
		w := do(r, req)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Expired_401", func(t *testing.T) {
		old := &auth.JWTer{Secret: []byte("test-secret"), TTL: -time.Minute}
		tok, err := old.Issue("010-1234-1234")
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		require.Equal(t, http.StatusUnauthorized, do(r, req).Code)
	})

	t.Run("Valid_SetsSubject", func(t *testing.T) {
		tok, err := j.Issue("010-1234-1234")
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		w := do(r, req)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "010-1234-1234|010-1234-1234", w.Body.String())
	})
}

func TestRateLimitPerIP(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitPerIP(0.001, 2))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	from := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		return do(r, req).Code
	}
	require.Equal(t, http.StatusOK, from("10.0.0.1"))
	require.Equal(t, http.StatusOK, from("10.0.0.1"))
	require.Equal(t, http.StatusTooManyRequests, from("10.0.0.1"))
	require.Equal(t, http.StatusOK, from("10.0.0.2"))
}

func TestIPLimiter_EvictsIdle(t *testing.T) {
	clock := time.Unix(1_700_000_000, 0)
	now := func() time.Time { return clock }
	l := newIPLimiter(1, 1, time.Minute, now)

	require.True(t, l.allow("10.0.0.1"))
	require.False(t, l.allow("10.0.0.1"))
	require.True(t, l.allow("10.0.0.2"))
	require.Equal(t, 2, l.size())

	clock = clock.Add(30 * time.Second)
	require.True(t, l.allow("10.0.0.2"))
	require.Equal(t, 2, l.size())

	clock = clock.Add(time.Minute)
	require.True(t, l.allow("10.0.0.3"))
	require.Equal(t, 1, l.size())

	require.False(t, l.allow("10.0.0.3"))
}

func TestIPLimiter_IdleNotShorterThanRefill(t *testing.T) {
	l := newIPLimiter(0.001, 2, time.Minute, time.Now)
	require.Equal(t, 2000*time.Second, l.idle)
}

func TestRateLimit_Disabled(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(0, 0))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, do(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(CtxRequestID)) })

	w := do(r, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, w.Header().Get(HeaderRequestID))
	require.Equal(t, w.Header().Get(HeaderRequestID), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc")
	require.Equal(t, "abc", do(r, req).Body.String())
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/", func(*gin.Context) { panic("boom") })

	w := do(r, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, 500, decode(t, w).Meta.Code)
	require.NotZero(t, logs.Len())
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(10 * time.Millisecond))
	r.GET("/", func(c *gin.Context) { <-c.Request.Context().Done() })

	w := do(r, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestMaxBodyBytes(t *testing.T) {
	r := gin.New()
	r.Use(MaxBodyBytes(8))
	r.POST("/", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	require.Equal(t, http.StatusOK, do(r, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("small"))).Code)
	require.Equal(t, http.StatusRequestEntityTooLarge,
		do(r, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("this body is too large"))).Code)
}

func TestAccessLog_MasksSubject(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(AccessLog(zap.New(core)))
	r.GET("/p", func(c *gin.Context) {
		c.Set(auth.GinKeySubject, "010-1234-5678")
		c.Status(http.StatusNoContent)
	})

	do(r, httptest.NewRequest(http.MethodGet, "/p?password=x&q=1", nil))
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	require.Equal(t, "010-****-5678", fields["subject"])
	require.Equal(t, int64(http.StatusNoContent), fields["status"])
	require.Equal(t, "/p", fields["path"])
}

func TestMetrics(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/m", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(httpReqTotal.WithLabelValues("/m", http.MethodGet, "200"))
	require.Equal(t, http.StatusOK, do(r, httptest.NewRequest(http.MethodGet, "/m", nil)).Code)
	require.Equal(t, before+1, testutil.ToFloat64(httpReqTotal.WithLabelValues("/m", http.MethodGet, "200")))

	do(r, httptest.NewRequest(http.MethodGet, "/no/such/path", nil))
	require.Equal(t, float64(1), testutil.ToFloat64(httpReqTotal.WithLabelValues("unmatched", http.MethodGet, "404")))
	require.Equal(t, float64(0), testutil.ToFloat64(httpInFlight))
}
