package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestAddr(t *testing.T) {
	require.Equal(t, "0.0.0.0:8080", Addr("0.0.0.0", 8080))
	require.Equal(t, ":9000", Addr("", 9000))
}

func TestBuildServer(t *testing.T) {
	srv := BuildServer(":0", http.NotFoundHandler(), time.Second, 2*time.Second, 3*time.Second)
	require.Equal(t, time.Second, srv.ReadTimeout)
	require.Equal(t, 2*time.Second, srv.WriteTimeout)
	require.Equal(t, 3*time.Second, srv.IdleTimeout)
	require.Equal(t, 1<<20, srv.MaxHeaderBytes)
}

func TestNewEngine_CORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewEngine()
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestShutdown(t *testing.T) {
	srv := BuildServer("127.0.0.1:0", http.NotFoundHandler(), time.Second, time.Second, time.Second)
	require.NoError(t, Shutdown(srv, time.Second))
}
