package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hrms-lite/backend/config"
	"hrms-lite/backend/internal/api/handler"
	"hrms-lite/backend/internal/api/middleware"
	"hrms-lite/backend/pkg/redis"
	"hrms-lite/backend/pkg/response"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时写接口不限流
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler.RegisterValidators()

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, response.CodeRouteNotFound, "Not Found")
	})

	var limiter middleware.RateLimiter
	if rdb != nil {
		limiter = rdb
	}
	writeLimit := middleware.RateLimit(limiter, cfg.RateLimit.Requests, cfg.RateLimit.Window, logger)

	// 前端使用 /api 前缀，根路径保留同一套路由
	register(r.Group(""), h, writeLimit)
	register(r.Group("/api"), h, writeLimit)

	r.GET("/", h.System.Root)

	return r
}

func register(g *gin.RouterGroup, h *handler.Handler, writeLimit gin.HandlerFunc) {
	g.GET("/health", h.System.Health)

	// 员工模块
	employees := g.Group("/employees")
	{
		employees.POST("", writeLimit, h.Employee.CreateEmployee)
		employees.GET("", h.Employee.ListEmployees)
		employees.GET("/dashboard/stats", h.Employee.GetDashboardStats)
		employees.GET("/:id", h.Employee.GetEmployee)
		employees.PUT("/:id", writeLimit, h.Employee.UpdateEmployee)
		employees.DELETE("/:id", writeLimit, h.Employee.DeleteEmployee)
		employees.GET("/:id/summary", h.Employee.GetEmployeeSummary)
	}

	// 考勤模块
	attendance := g.Group("/attendance")
	{
		attendance.POST("", writeLimit, h.Attendance.MarkAttendance)
		attendance.GET("", h.Attendance.ListAttendance)
		attendance.GET("/today", h.Attendance.GetTodayAttendance)
		attendance.GET("/export", h.Export.ExportAttendance)
		attendance.GET("/employee/:id", h.Attendance.ListEmployeeAttendance)
		attendance.GET("/:id", h.Attendance.GetAttendance)
		attendance.PUT("/:id", writeLimit, h.Attendance.UpdateAttendance)
		attendance.DELETE("/:id", writeLimit, h.Attendance.DeleteAttendance)
	}
}
