package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hrms-lite/backend/config"
	"hrms-lite/backend/internal/dto"
)

// SystemHandler 根路径与健康检查
type SystemHandler struct {
	app *config.AppConfig
}

// NewSystemHandler 创建 SystemHandler
func NewSystemHandler(app *config.AppConfig) *SystemHandler {
	return &SystemHandler{app: app}
}

// Root 欢迎信息
// GET /
func (h *SystemHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, dto.MessageResponse{
		Message: "Welcome to HRMS Lite API",
		Docs:    "/docs",
		Version: h.app.Version,
	})
}

// Health 存活检查
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:  "healthy",
		Service: h.app.Name,
	})
}
