package middleware

import (
	"context"
	"net/http"
	"testing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-go/internal/config"
)

func newEngine(auth config.AuthConfig) *server.Hertz {
	h := server.New(server.WithHostPorts("127.0.0.1:0"))
	h.Use(RequestID(), AccessLog())
	h.GET("/open", func(ctx context.Context, c *app.RequestContext) {
		c.String(http.StatusOK, "ok")
	})
	admin := h.Group("/admin", APIKeyAuth(auth))
	admin.GET("/ping", func(ctx context.Context, c *app.RequestContext) {
		c.String(http.StatusOK, "pong")
	})
	return h
}

func TestRequestID(t *testing.T) {
	h := newEngine(config.AuthConfig{})

	resp := ut.PerformRequest(h.Engine, "GET", "/open", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, string(resp.Header().Peek(HeaderRequestID)), 36)

	resp = ut.PerformRequest(h.Engine, "GET", "/open", nil, ut.Header{Key: HeaderRequestID, Value: "req-42"})
	assert.Equal(t, "req-42", string(resp.Header().Peek(HeaderRequestID)))
}

func TestAPIKeyAuth(t *testing.T) {
	h := newEngine(config.AuthConfig{APIKeys: []string{"secret-1", "secret-2"}, KeyHeader: "X-API-Key"})

	tests := []struct {
		name   string
		header []ut.Header
		want   int
	}{
		{"缺少密钥", nil, http.StatusUnauthorized},
		{"错误密钥", []ut.Header{{Key: "X-API-Key", Value: "nope"}}, http.StatusUnauthorized},
		{"第一个密钥", []ut.Header{{Key: "X-API-Key", Value: "secret-1"}}, http.StatusOK},
		{"第二个密钥", []ut.Header{{Key: "X-API-Key", Value: "secret-2"}}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ut.PerformRequest(h.Engine, "GET", "/admin/ping", nil, tt.header...)
			assert.Equal(t, tt.want, resp.Code)
			if tt.want == http.StatusUnauthorized {
				assert.JSONEq(t, `{"error":"Unauthorized"}`, resp.Body.String())
			}
		})
	}
}

func TestAPIKeyAuth_NoKeysRejectsEverything(t *testing.T) {
	h := newEngine(config.AuthConfig{})

	resp := ut.PerformRequest(h.Engine, "GET", "/admin/ping", nil, ut.Header{Key: "X-API-Key", Value: ""})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ut.PerformRequest(h.Engine, "GET", "/admin/ping", nil, ut.Header{Key: "X-API-Key", Value: "anything"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
