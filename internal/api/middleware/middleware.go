// Package middleware 提供请求ID、访问日志和管理接口鉴权中间件。
package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/google/uuid"
	"github.com/hertz-contrib/keyauth"

	"portfolio-go/internal/config"
	"portfolio-go/internal/logger"
)

// HeaderRequestID 请求ID头
const HeaderRequestID = "X-Request-ID"

// RequestID 为每个请求分配ID，写回响应头并注入到上下文日志中
func RequestID() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		id := string(c.GetHeader(HeaderRequestID))
		if id == "" {
			id = uuid.NewString()
		}
		c.Response.Header.Set(HeaderRequestID, id)

		l := logger.Logger.With().Str("request_id", id).Logger()
		c.Next(l.WithContext(ctx))
	}
}

// AccessLog 记录每个请求的方法、路径、状态码和耗时
func AccessLog() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()
		c.Next(ctx)
		logger.Ctx(ctx).Info().
			Str("method", string(c.Method())).
			Str("path", string(c.Path())).
			Int("status", c.Response.StatusCode()).
			Dur("latency", time.Since(start)).
			Msg("请求完成")
	}
}

var errInvalidAPIKey = errors.New("invalid api key")

// APIKeyAuth 校验 auth.key_header 中的密钥。未配置任何密钥时拒绝所有请求。
func APIKeyAuth(auth config.AuthConfig) app.HandlerFunc {
	header := auth.KeyHeader
	if header == "" {
		header = "X-API-Key"
	}
	keys := make([][]byte, 0, len(auth.APIKeys))
	for _, k := range auth.APIKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}
	if len(keys) == 0 {
		logger.Warn().Msg("未配置 auth.api_keys, 管理接口将拒绝所有请求")
	}

	return keyauth.New(
		keyauth.WithKeyLookUp("header:"+header, ""),
		keyauth.WithValidator(func(_ context.Context, _ *app.RequestContext, key string) (bool, error) {
			for _, k := range keys {
				if subtle.ConstantTimeCompare(k, []byte(key)) == 1 {
					return true, nil
				}
			}
			return false, errInvalidAPIKey
		}),
		keyauth.WithErrorHandler(func(ctx context.Context, c *app.RequestContext, err error) {
			logger.Ctx(ctx).Warn().Err(err).Str("path", string(c.Path())).Msg("管理接口鉴权失败")
			c.AbortWithStatusJSON(consts.StatusUnauthorized, utils.H{"error": "Unauthorized"})
		}),
	)
}
