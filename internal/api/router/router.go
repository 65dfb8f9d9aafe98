package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"portfolio-go/internal/api/handler"
	"portfolio-go/internal/api/middleware"
	"portfolio-go/internal/config"
)

// RegisterRoutes 注册 API 路由，/api/admin 下的接口需要 API Key
func RegisterRoutes(h *server.Hertz, resumeHandler *handler.ResumeHandler, cfg *config.Config) {
	h.Use(middleware.RequestID(), middleware.AccessLog())

	api := h.Group("/api")
	api.GET("/health", resumeHandler.HandleHealth)
	api.GET("/resume", resumeHandler.HandleDownload)
	api.GET("/resume/content", resumeHandler.HandleContent)
	api.GET("/resume/check", resumeHandler.HandleCheck)

	admin := api.Group("/admin", middleware.APIKeyAuth(cfg.Auth))
	admin.POST("/upload-resume", middleware.RateLimit(cfg.Server.UploadRatePerMinute), resumeHandler.HandleUpload)
	admin.DELETE("/delete-resume", resumeHandler.HandleDelete)
	admin.GET("/resume", resumeHandler.HandleAdminInfo)
	admin.GET("/resume/export", resumeHandler.HandleExport)
	admin.POST("/resume/education", resumeHandler.HandleSaveEducation)
	admin.DELETE("/resume/education/:id", resumeHandler.HandleDeleteEducation)
	admin.POST("/resume/experience", resumeHandler.HandleSaveExperience)
	admin.DELETE("/resume/experience/:id", resumeHandler.HandleDeleteExperience)
}
