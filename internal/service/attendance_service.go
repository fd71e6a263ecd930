package service

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"hrms-lite/backend/internal/dto"
	"hrms-lite/backend/internal/model"
	"hrms-lite/backend/internal/repository"
	"hrms-lite/backend/pkg/clock"
	pkgerrors "hrms-lite/backend/pkg/errors"
)

// ── 考勤模块业务错误 ──

var (
	ErrAttendanceNotFound      = errors.New("attendance record not found")
	ErrAttendanceAlreadyMarked = errors.New("attendance already marked")
)

// unknownEmployee 考勤关联的员工无法读取时的占位
const unknownEmployee = "Unknown"

func attendanceNotFound(id string) error {
	return pkgerrors.NotFound(ErrAttendanceNotFound, "Attendance record with ID '%s' not found", id)
}

// AttendanceService 考勤业务接口
type AttendanceService interface {
	// Mark 为在职员工记录某日考勤，同一员工同一天只能有一条
	Mark(ctx context.Context, employeeID string, date time.Time, status model.AttendanceStatus) (*dto.AttendanceResponse, error)
	// List 仅包含在职员工的考勤，按日期倒序
	List(ctx context.Context, req *dto.AttendanceListRequest) ([]dto.AttendanceResponse, error)
	// ListForEmployee 员工本身存在即可，不要求在职
	ListForEmployee(ctx context.Context, employeeID string, req *dto.DateRangeRequest) ([]dto.AttendanceResponse, error)
	GetByID(ctx context.Context, id string) (*dto.AttendanceResponse, error)
	UpdateStatus(ctx context.Context, id string, status model.AttendanceStatus) (*dto.AttendanceResponse, error)
	Delete(ctx context.Context, id string) error
	// TodayRoster 每位在职员工一条，未标记的状态为 "Not Marked"
	TodayRoster(ctx context.Context) ([]dto.TodayAttendanceResponse, error)
}

type attendanceService struct {
	repo   *repository.Repository
	clock  clock.Clock
	logger *zap.Logger
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(repo *repository.Repository, clk clock.Clock, logger *zap.Logger) AttendanceService {
	return &attendanceService{repo: repo, clock: clk, logger: logger}
}

// ────────────────────── Mark ──────────────────────

func (s *attendanceService) Mark(ctx context.Context, employeeID string, date time.Time, status model.AttendanceStatus) (*dto.AttendanceResponse, error) {
	if !status.Valid() {
		return nil, pkgerrors.Validation(pkgerrors.FieldError{Field: "status", Message: "Status must be one of: Present, Absent"})
	}
	date = clock.DateOf(date)
	key, ok := canonicalID(employeeID)
	if !ok {
		return nil, employeeNotFound(employeeID)
	}

	var (
		emp *model.Employee
		att *model.Attendance
	)
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		emp, err = tx.Employee.GetActiveByID(ctx, key)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return employeeNotFound(employeeID)
			}
			return errors.Wrap(err, "query employee")
		}

		if _, err := tx.Attendance.GetByEmployeeAndDate(ctx, key, date); err == nil {
			return alreadyMarked(emp, date)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.Wrap(err, "query attendance")
		}

		att = &model.Attendance{
			EmployeeID: key,
			Date:       datatypes.Date(date),
			Status:     status,
		}
		if err := tx.Attendance.Create(ctx, att); err != nil {
			// 并发标记由 (employee_id, date) 唯一索引兜底
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return alreadyMarked(emp, date)
			}
			return errors.Wrap(err, "create attendance")
		}
		return nil
	})
	if err != nil {
		if !isBusinessError(err) {
			s.logger.Error("标记考勤失败", zap.String("employee_id", employeeID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("考勤已标记",
		zap.String("employee_id", employeeID),
		zap.String("date", clock.FormatDate(date)),
		zap.String("status", string(status)),
	)
	return toAttendanceResponse(att, emp), nil
}

func alreadyMarked(emp *model.Employee, date time.Time) error {
	return pkgerrors.Conflict(ErrAttendanceAlreadyMarked,
		"Attendance already marked for employee '%s' on %s", emp.EmployeeCode, clock.FormatDate(date))
}

// ────────────────────── List ──────────────────────

func (s *attendanceService) List(ctx context.Context, req *dto.AttendanceListRequest) ([]dto.AttendanceResponse, error) {
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	employeeKey, ok := employeeFilter(req.EmployeeID)
	if !ok {
		return []dto.AttendanceResponse{}, nil
	}

	filters := &repository.AttendanceListFilters{
		EmployeeID: employeeKey,
		StartDate:  start,
		EndDate:    end,
		Status:     model.AttendanceStatus(req.Status),
	}

	records, err := s.repo.Attendance.List(ctx, filters, req.GetSkip(), req.GetLimit())
	if err != nil {
		s.logger.Error("列出考勤失败", zap.Error(err))
		return nil, errors.Wrap(err, "list attendance")
	}

	return lo.Map(records, func(a model.Attendance, _ int) dto.AttendanceResponse {
		return *toAttendanceResponse(&a, a.Employee)
	}), nil
}

// ────────────────────── ListForEmployee ──────────────────────

func (s *attendanceService) ListForEmployee(ctx context.Context, employeeID string, req *dto.DateRangeRequest) ([]dto.AttendanceResponse, error) {
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
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

	records, err := s.repo.Attendance.ListByEmployee(ctx, key, start, end)
	if err != nil {
		s.logger.Error("查询员工考勤失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, errors.Wrap(err, "list employee attendance")
	}

	return lo.Map(records, func(a model.Attendance, _ int) dto.AttendanceResponse {
		return *toAttendanceResponse(&a, emp)
	}), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *attendanceService) GetByID(ctx context.Context, id string) (*dto.AttendanceResponse, error) {
	key, ok := canonicalID(id)
	if !ok {
		return nil, attendanceNotFound(id)
	}

	att, err := s.repo.Attendance.GetByID(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, attendanceNotFound(id)
		}
		s.logger.Error("查询考勤失败", zap.String("id", id), zap.Error(err))
		return nil, errors.Wrap(err, "query attendance")
	}

	return toAttendanceResponse(att, s.lookupEmployee(ctx, s.repo, att.EmployeeID)), nil
}

// ────────────────────── UpdateStatus ──────────────────────

func (s *attendanceService) UpdateStatus(ctx context.Context, id string, status model.AttendanceStatus) (*dto.AttendanceResponse, error) {
	if !status.Valid() {
		return nil, pkgerrors.Validation(pkgerrors.FieldError{Field: "status", Message: "Status must be one of: Present, Absent"})
	}
	key, ok := canonicalID(id)
	if !ok {
		return nil, attendanceNotFound(id)
	}

	var (
		att *model.Attendance
		emp *model.Employee
	)
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Attendance.UpdateStatus(ctx, key, status); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return attendanceNotFound(id)
			}
			return errors.Wrap(err, "update attendance")
		}

		var err error
		att, err = tx.Attendance.GetByID(ctx, key)
		if err != nil {
			return errors.Wrap(err, "reload attendance")
		}
		emp = s.lookupEmployee(ctx, tx, att.EmployeeID)
		return nil
	})
	if err != nil {
		if !isBusinessError(err) {
			s.logger.Error("更新考勤失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	return toAttendanceResponse(att, emp), nil
}

// ────────────────────── Delete ──────────────────────

func (s *attendanceService) Delete(ctx context.Context, id string) error {
	key, ok := canonicalID(id)
	if !ok {
		return attendanceNotFound(id)
	}

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Attendance.Delete(ctx, key); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return attendanceNotFound(id)
			}
			return errors.Wrap(err, "delete attendance")
		}
		return nil
	})
	if err != nil {
		if !isBusinessError(err) {
			s.logger.Error("删除考勤失败", zap.String("id", id), zap.Error(err))
		}
		return err
	}

	s.logger.Info("考勤已删除", zap.String("id", id))
	return nil
}

// ────────────────────── TodayRoster ──────────────────────

func (s *attendanceService) TodayRoster(ctx context.Context) ([]dto.TodayAttendanceResponse, error) {
	today := clock.Today(s.clock)

	var (
		emps    []model.Employee
		records []model.Attendance
	)
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		if emps, err = tx.Employee.ListActive(ctx); err != nil {
			return errors.Wrap(err, "list active employees")
		}
		if records, err = tx.Attendance.ListByDate(ctx, today); err != nil {
			return errors.Wrap(err, "list today attendance")
		}
		return nil
	})
	if err != nil {
		s.logger.Error("查询今日考勤失败", zap.Error(err))
		return nil, err
	}

	byEmployee := lo.KeyBy(records, func(a model.Attendance) string { return a.EmployeeID })
	date := clock.FormatDate(today)

	return lo.Map(emps, func(e model.Employee, _ int) dto.TodayAttendanceResponse {
		status := model.StatusNotMarked
		if a, ok := byEmployee[e.ID]; ok {
			status = string(a.Status)
		}
		return dto.TodayAttendanceResponse{
			EmployeeID:   e.ID,
			EmployeeCode: e.EmployeeCode,
			FullName:     e.FullName,
			Department:   e.Department,
			Date:         date,
			Status:       status,
		}
	}), nil
}

// ── 内部辅助方法 ──

// lookupEmployee 读取考勤所属员工，失败时返回 nil 由调用方使用占位值
func (s *attendanceService) lookupEmployee(ctx context.Context, repo *repository.Repository, id string) *model.Employee {
	emp, err := repo.Employee.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("读取考勤关联员工失败", zap.String("employee_id", id), zap.Error(err))
		}
		return nil
	}
	return emp
}

// parseDateRange 解析可选的起止日期，均为闭区间
func parseDateRange(startStr, endStr string) (start, end *time.Time, err error) {
	var fields []pkgerrors.FieldError
	if startStr != "" {
		t, perr := clock.ParseDate(startStr)
		if perr != nil {
			fields = append(fields, pkgerrors.FieldError{Field: "start_date", Message: "Invalid date format, expected YYYY-MM-DD"})
		} else {
			start = &t
		}
	}
	if endStr != "" {
		t, perr := clock.ParseDate(endStr)
		if perr != nil {
			fields = append(fields, pkgerrors.FieldError{Field: "end_date", Message: "Invalid date format, expected YYYY-MM-DD"})
		} else {
			end = &t
		}
	}
	if len(fields) > 0 {
		return nil, nil, pkgerrors.Validation(fields...)
	}
	return start, end, nil
}

func toAttendanceResponse(att *model.Attendance, emp *model.Employee) *dto.AttendanceResponse {
	resp := &dto.AttendanceResponse{
		ID:           att.ID,
		EmployeeID:   att.EmployeeID,
		EmployeeName: unknownEmployee,
		EmployeeCode: unknownEmployee,
		Date:         clock.FormatDate(att.Day()),
		Status:       string(att.Status),
		CreatedAt:    formatTime(att.CreatedAt),
	}
	if emp != nil {
		resp.EmployeeName = emp.FullName
		resp.EmployeeCode = emp.EmployeeCode
	}
	return resp
}
