package service

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hrms-lite/backend/internal/repository"
	"hrms-lite/backend/pkg/clock"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Employee   EmployeeService
	Attendance AttendanceService
	Report     ReportService
	Export     ExportService
}

// NewService 创建 Service 聚合
// clk 决定“今天”的取值，生产环境使用配置时区的系统时钟，测试注入固定时钟
func NewService(repo *repository.Repository, clk clock.Clock, logger *zap.Logger) *Service {
	return &Service{
		Employee:   NewEmployeeService(repo, logger),
		Attendance: NewAttendanceService(repo, clk, logger),
		Report:     NewReportService(repo, clk, logger),
		Export:     NewExportService(repo, clk, logger),
	}
}

// canonicalID 主键均为 UUID；格式不合法的 ID 不可能命中任何记录
func canonicalID(id string) (string, bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

// employeeFilter 解析可选的员工过滤条件；matchable 为 false 时结果必为空
func employeeFilter(id string) (key string, matchable bool) {
	if id == "" {
		return "", true
	}
	return canonicalID(id)
}

// formatTime 时间戳统一输出为 RFC3339（UTC）
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
