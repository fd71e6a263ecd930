package service

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hrms-lite/backend/internal/dto"
	"hrms-lite/backend/internal/model"
	"hrms-lite/backend/internal/repository"
	"hrms-lite/backend/pkg/clock"
	"hrms-lite/backend/pkg/stats"
)

// recentEmployeesLimit 仪表盘展示的最近入职人数
const recentEmployeesLimit = 5

// ReportService 报表业务接口（只读）
type ReportService interface {
	DashboardStats(ctx context.Context) (*dto.DashboardStatsResponse, error)
	// EmployeeSummary 不要求员工在职
	EmployeeSummary(ctx context.Context, employeeID string) (*dto.EmployeeSummaryResponse, error)
}

type reportService struct {
	repo   *repository.Repository
	clock  clock.Clock
	logger *zap.Logger
}

// NewReportService 创建 ReportService 实例
func NewReportService(repo *repository.Repository, clk clock.Clock, logger *zap.Logger) ReportService {
	return &reportService{repo: repo, clock: clk, logger: logger}
}

// ────────────────────── DashboardStats ──────────────────────
//
// today_attendance 统计当天全部考勤（不区分员工在职状态），
// not_marked = 在职人数 - present - absent，不做截断

func (s *reportService) DashboardStats(ctx context.Context) (*dto.DashboardStatsResponse, error) {
	today := clock.Today(s.clock)

	var (
		total       int64
		departments []repository.DepartmentCount
		todayCounts repository.StatusCounts
		allCounts   repository.StatusCounts
		recent      []model.Employee
	)
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		if total, err = tx.Employee.CountActive(ctx); err != nil {
			return errors.Wrap(err, "count employees")
		}
		if departments, err = tx.Employee.CountByDepartment(ctx); err != nil {
			return errors.Wrap(err, "count departments")
		}
		if todayCounts, err = tx.Attendance.CountByStatus(ctx, &repository.StatusCountFilters{Date: &today}); err != nil {
			return errors.Wrap(err, "count today attendance")
		}
		if allCounts, err = tx.Attendance.CountByStatus(ctx, nil); err != nil {
			return errors.Wrap(err, "count attendance")
		}
		if recent, err = tx.Employee.ListRecent(ctx, recentEmployeesLimit); err != nil {
			return errors.Wrap(err, "list recent employees")
		}
		return nil
	})
	if err != nil {
		s.logger.Error("统计仪表盘失败", zap.Error(err))
		return nil, err
	}

	return &dto.DashboardStatsResponse{
		TotalEmployees: total,
		Departments: lo.Map(departments, func(d repository.DepartmentCount, _ int) dto.DepartmentCount {
			return dto.DepartmentCount{Name: d.Name, Count: d.Count}
		}),
		TodayAttendance: dto.TodayAttendanceStats{
			Present:   todayCounts.Present,
			Absent:    todayCounts.Absent,
			NotMarked: total - todayCounts.Present - todayCounts.Absent,
		},
		OverallAttendanceRate: stats.Rate(allCounts.Present, allCounts.Total()),
		RecentEmployees: lo.Map(recent, func(e model.Employee, _ int) dto.RecentEmployee {
			return dto.RecentEmployee{
				ID:           e.ID,
				EmployeeCode: e.EmployeeCode,
				FullName:     e.FullName,
				Department:   e.Department,
				CreatedAt:    formatTime(e.CreatedAt),
			}
		}),
	}, nil
}

// ────────────────────── EmployeeSummary ──────────────────────

func (s *reportService) EmployeeSummary(ctx context.Context, employeeID string) (*dto.EmployeeSummaryResponse, error) {
	key, ok := canonicalID(employeeID)
	if !ok {
		return nil, employeeNotFound(employeeID)
	}

	emp, err := s.repo.Employee.GetByID(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, employeeNotFound(employeeID)
		}
		s.logger.Error("查询员工失败", zap.String("id", employeeID), zap.Error(err))
		return nil, errors.Wrap(err, "query employee")
	}

	counts, err := s.repo.Attendance.CountByStatus(ctx, &repository.StatusCountFilters{EmployeeID: key})
	if err != nil {
		s.logger.Error("统计员工考勤失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, errors.Wrap(err, "count employee attendance")
	}

	return &dto.EmployeeSummaryResponse{
		EmployeeID:     emp.ID,
		EmployeeCode:   emp.EmployeeCode,
		FullName:       emp.FullName,
		Department:     emp.Department,
		TotalPresent:   counts.Present,
		TotalAbsent:    counts.Absent,
		AttendanceRate: stats.Rate(counts.Present, counts.Total()),
	}, nil
}
