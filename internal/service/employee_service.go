package service

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hrms-lite/backend/internal/dto"
	"hrms-lite/backend/internal/model"
	"hrms-lite/backend/internal/repository"
	pkgerrors "hrms-lite/backend/pkg/errors"
)

// ── 员工模块业务错误 ──

var (
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrEmployeeCodeExists  = errors.New("employee code already exists")
	ErrEmployeeEmailExists = errors.New("employee email already exists")
	ErrEmployeeExists      = errors.New("employee already exists")
)

func employeeNotFound(id string) error {
	return pkgerrors.NotFound(ErrEmployeeNotFound, "Employee with ID '%s' not found", id)
}

func emailConflict(email string) error {
	return pkgerrors.Conflict(ErrEmployeeEmailExists, "Employee with email '%s' already exists", email)
}

// EmployeeService 员工业务接口
type EmployeeService interface {
	Create(ctx context.Context, req *dto.CreateEmployeeRequest) (*dto.EmployeeResponse, error)
	GetByID(ctx context.Context, id string) (*dto.EmployeeResponse, error)
	List(ctx context.Context, req *dto.EmployeeListRequest) ([]dto.EmployeeResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateEmployeeRequest) (*dto.EmployeeResponse, error)
	// Delete 物理删除员工并级联删除其全部考勤
	Delete(ctx context.Context, id string) error
}

type employeeService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEmployeeService 创建 EmployeeService 实例
func NewEmployeeService(repo *repository.Repository, logger *zap.Logger) EmployeeService {
	return &employeeService{repo: repo, logger: logger}
}

// normalizeCode 工号去空白并转大写
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// normalizeEmail 邮箱去空白并转小写
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ────────────────────── Create ──────────────────────

func (s *employeeService) Create(ctx context.Context, req *dto.CreateEmployeeRequest) (*dto.EmployeeResponse, error) {
	emp := &model.Employee{
		EmployeeCode: normalizeCode(req.EmployeeCode),
		FullName:     strings.TrimSpace(req.FullName),
		Email:        normalizeEmail(req.Email),
		Department:   strings.TrimSpace(req.Department),
		IsActive:     true,
	}

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		// 先校验工号，再校验邮箱（仅在职员工范围）
		if _, err := tx.Employee.GetActiveByCode(ctx, emp.EmployeeCode); err == nil {
			return pkgerrors.Conflict(ErrEmployeeCodeExists, "Employee with ID '%s' already exists", emp.EmployeeCode)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.Wrap(err, "query employee by code")
		}

		if _, err := tx.Employee.GetActiveByEmail(ctx, emp.Email); err == nil {
			return emailConflict(emp.Email)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.Wrap(err, "query employee by email")
		}

		if err := tx.Employee.Create(ctx, emp); err != nil {
			// 并发创建时由部分唯一索引兜底
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return pkgerrors.Conflict(ErrEmployeeExists,
					"Employee with ID '%s' or email '%s' already exists", emp.EmployeeCode, emp.Email)
			}
			return errors.Wrap(err, "create employee")
		}
		return nil
	})
	if err != nil {
		if !isBusinessError(err) {
			s.logger.Error("创建员工失败", zap.String("employee_code", emp.EmployeeCode), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("员工已创建", zap.String("id", emp.ID), zap.String("employee_code", emp.EmployeeCode))
	return toEmployeeResponse(emp), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *employeeService) GetByID(ctx context.Context, id string) (*dto.EmployeeResponse, error) {
	key, ok := canonicalID(id)
	if !ok {
		return nil, employeeNotFound(id)
	}

	emp, err := s.repo.Employee.GetByID(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, employeeNotFound(id)
		}
		s.logger.Error("查询员工失败", zap.String("id", id), zap.Error(err))
		return nil, errors.Wrap(err, "query employee")
	}

	return toEmployeeResponse(emp), nil
}

// ────────────────────── List ──────────────────────

func (s *employeeService) List(ctx context.Context, req *dto.EmployeeListRequest) ([]dto.EmployeeResponse, error) {
	filters := &repository.EmployeeListFilters{
		Department: strings.TrimSpace(req.Department),
		Search:     strings.TrimSpace(req.Search),
	}

	emps, err := s.repo.Employee.List(ctx, filters, req.GetSkip(), req.GetLimit())
	if err != nil {
		s.logger.Error("列出员工失败", zap.Error(err))
		return nil, errors.Wrap(err, "list employees")
	}

	return lo.Map(emps, func(e model.Employee, _ int) dto.EmployeeResponse {
		return *toEmployeeResponse(&e)
	}), nil
}

// ────────────────────── Update ──────────────────────

func (s *employeeService) Update(ctx context.Context, id string, req *dto.UpdateEmployeeRequest) (*dto.EmployeeResponse, error) {
	if fieldErrs := blankFields(req); len(fieldErrs) > 0 {
		return nil, pkgerrors.Validation(fieldErrs...)
	}
	key, ok := canonicalID(id)
	if !ok {
		return nil, employeeNotFound(id)
	}

	var emp *model.Employee
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		emp, err = tx.Employee.GetByID(ctx, key)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return employeeNotFound(id)
			}
			return errors.Wrap(err, "query employee")
		}

		// 邮箱变更时与其他所有员工比对（不区分在职状态）
		if req.Email != nil {
			email := normalizeEmail(*req.Email)
			if _, err := tx.Employee.GetOtherByEmail(ctx, email, key); err == nil {
				return emailConflict(email)
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.Wrap(err, "query employee by email")
			}
			emp.Email = email
		}
		if req.FullName != nil {
			emp.FullName = strings.TrimSpace(*req.FullName)
		}
		if req.Department != nil {
			emp.Department = strings.TrimSpace(*req.Department)
		}

		if err := tx.Employee.Update(ctx, emp); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return emailConflict(emp.Email)
			}
			return errors.Wrap(err, "update employee")
		}
		return nil
	})
	if err != nil {
		if !isBusinessError(err) {
			s.logger.Error("更新员工失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	return toEmployeeResponse(emp), nil
}

// ────────────────────── Delete ──────────────────────

func (s *employeeService) Delete(ctx context.Context, id string) error {
	key, ok := canonicalID(id)
	if !ok {
		return employeeNotFound(id)
	}

	var removed int64
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if _, err := tx.Employee.GetByID(ctx, key); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return employeeNotFound(id)
			}
			return errors.Wrap(err, "query employee")
		}

		// 先删考勤再删员工；外键 ON DELETE CASCADE 同样兜底
		var err error
		removed, err = tx.Attendance.DeleteByEmployee(ctx, key)
		if err != nil {
			return errors.Wrap(err, "delete employee attendance")
		}

		if err := tx.Employee.Delete(ctx, key); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return employeeNotFound(id)
			}
			return errors.Wrap(err, "delete employee")
		}
		return nil
	})
	if err != nil {
		if !isBusinessError(err) {
			s.logger.Error("删除员工失败", zap.String("id", id), zap.Error(err))
		}
		return err
	}

	s.logger.Info("员工已删除", zap.String("id", id), zap.Int64("attendance_removed", removed))
	return nil
}

// ── 内部辅助方法 ──

func toEmployeeResponse(emp *model.Employee) *dto.EmployeeResponse {
	resp := &dto.EmployeeResponse{
		ID:           emp.ID,
		EmployeeCode: emp.EmployeeCode,
		FullName:     emp.FullName,
		Email:        emp.Email,
		Department:   emp.Department,
		IsActive:     emp.IsActive,
		CreatedAt:    formatTime(emp.CreatedAt),
	}
	// 插入时 UpdatedAt 与 CreatedAt 同步写入，首次更新前按未更新处理
	if !emp.UpdatedAt.IsZero() && !emp.UpdatedAt.Equal(emp.CreatedAt) {
		resp.UpdatedAt = lo.ToPtr(formatTime(emp.UpdatedAt))
	}
	return resp
}

// blankFields 出现但仅含空白的字段
func blankFields(req *dto.UpdateEmployeeRequest) []pkgerrors.FieldError {
	fields := []struct {
		name  string
		value *string
	}{
		{"full_name", req.FullName},
		{"email", req.Email},
		{"department", req.Department},
	}

	var errs []pkgerrors.FieldError
	for _, f := range fields {
		if f.value != nil && strings.TrimSpace(*f.value) == "" {
			errs = append(errs, pkgerrors.FieldError{Field: f.name, Message: "Field cannot be empty or whitespace"})
		}
	}
	return errs
}

// isBusinessError 业务错误（404/409/422）无需按系统故障记录
func isBusinessError(err error) bool {
	return errors.Is(err, pkgerrors.ErrNotFound) ||
		errors.Is(err, pkgerrors.ErrConflict) ||
		errors.Is(err, pkgerrors.ErrValidation)
}
