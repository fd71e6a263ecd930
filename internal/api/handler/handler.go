package handler

import (
	"hrms-lite/backend/config"
	"hrms-lite/backend/internal/service"
	"hrms-lite/backend/pkg/clock"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	System     *SystemHandler
	Employee   *EmployeeHandler
	Attendance *AttendanceHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(app *config.AppConfig, svc *service.Service, clk clock.Clock) *Handler {
	return &Handler{
		System:     NewSystemHandler(app),
		Employee:   NewEmployeeHandler(svc.Employee, svc.Report),
		Attendance: NewAttendanceHandler(svc.Attendance, clk),
		Export:     NewExportHandler(svc.Export),
	}
}
