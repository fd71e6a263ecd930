package repository

import (
	"context"

	"gorm.io/gorm"

	"hrms-lite/backend/internal/model"
)

// EmployeeListFilters 员工列表过滤条件（仅在职员工）
type EmployeeListFilters struct {
	Department string // 部门子串，大小写不敏感
	Search     string // 姓名 / 工号 / 邮箱 任一子串命中
}

// DepartmentCount 部门在职人数聚合
type DepartmentCount struct {
	Name  string
	Count int64
}

// EmployeeRepository 员工数据访问接口
type EmployeeRepository interface {
	Create(ctx context.Context, emp *model.Employee) error
	GetByID(ctx context.Context, id string) (*model.Employee, error)
	GetActiveByID(ctx context.Context, id string) (*model.Employee, error)
	GetActiveByCode(ctx context.Context, code string) (*model.Employee, error)
	GetActiveByEmail(ctx context.Context, email string) (*model.Employee, error)
	// GetOtherByEmail 查找除 excludeID 外使用该邮箱的员工（不区分在职状态）
	GetOtherByEmail(ctx context.Context, email, excludeID string) (*model.Employee, error)
	List(ctx context.Context, filters *EmployeeListFilters, offset, limit int) ([]model.Employee, error)
	// ListActive 全部在职员工，按创建时间倒序
	ListActive(ctx context.Context) ([]model.Employee, error)
	ListRecent(ctx context.Context, limit int) ([]model.Employee, error)
	Update(ctx context.Context, emp *model.Employee) error
	Delete(ctx context.Context, id string) error
	CountActive(ctx context.Context) (int64, error)
	CountByDepartment(ctx context.Context) ([]DepartmentCount, error)
}

// employeeRepo EmployeeRepository 的 GORM 实现
type employeeRepo struct {
	db *gorm.DB
}

// NewEmployeeRepo 创建 EmployeeRepository 实例
func NewEmployeeRepo(db *gorm.DB) EmployeeRepository {
	return &employeeRepo{db: db}
}

func (r *employeeRepo) active(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Where("is_active = ?", true)
}

func (r *employeeRepo) Create(ctx context.Context, emp *model.Employee) error {
	return r.db.WithContext(ctx).Create(emp).Error
}

func (r *employeeRepo) GetByID(ctx context.Context, id string) (*model.Employee, error) {
	var emp model.Employee
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&emp).Error
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

func (r *employeeRepo) GetActiveByID(ctx context.Context, id string) (*model.Employee, error) {
	var emp model.Employee
	err := r.active(ctx).
		Where("id = ?", id).
		First(&emp).Error
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

func (r *employeeRepo) GetActiveByCode(ctx context.Context, code string) (*model.Employee, error) {
	var emp model.Employee
	err := r.active(ctx).
		Where("employee_code = ?", code).
		First(&emp).Error
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

func (r *employeeRepo) GetActiveByEmail(ctx context.Context, email string) (*model.Employee, error) {
	var emp model.Employee
	err := r.active(ctx).
		Where("email = ?", email).
		First(&emp).Error
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

func (r *employeeRepo) GetOtherByEmail(ctx context.Context, email, excludeID string) (*model.Employee, error) {
	var emp model.Employee
	err := r.db.WithContext(ctx).
		Where("email = ? AND id <> ?", email, excludeID).
		First(&emp).Error
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

func (r *employeeRepo) List(ctx context.Context, filters *EmployeeListFilters, offset, limit int) ([]model.Employee, error) {
	var emps []model.Employee

	db := r.active(ctx)
	if filters != nil {
		if filters.Department != "" {
			db = db.Where("department ILIKE ?", likePattern(filters.Department))
		}
		if filters.Search != "" {
			p := likePattern(filters.Search)
			db = db.Where("(full_name ILIKE ? OR employee_code ILIKE ? OR email ILIKE ?)", p, p, p)
		}
	}

	err := db.
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&emps).Error
	return emps, err
}

func (r *employeeRepo) ListActive(ctx context.Context) ([]model.Employee, error) {
	var emps []model.Employee
	err := r.active(ctx).
		Order("created_at DESC").Order("id DESC").
		Find(&emps).Error
	return emps, err
}

func (r *employeeRepo) ListRecent(ctx context.Context, limit int) ([]model.Employee, error) {
	var emps []model.Employee
	err := r.active(ctx).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&emps).Error
	return emps, err
}

func (r *employeeRepo) Update(ctx context.Context, emp *model.Employee) error {
	return r.db.WithContext(ctx).Save(emp).Error
}

// Delete 物理删除员工；调用方需先在同一事务内删除其考勤记录
func (r *employeeRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Employee{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *employeeRepo) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.active(ctx).
		Model(&model.Employee{}).
		Count(&count).Error
	return count, err
}

func (r *employeeRepo) CountByDepartment(ctx context.Context) ([]DepartmentCount, error) {
	var rows []DepartmentCount
	err := r.active(ctx).
		Model(&model.Employee{}).
		Select("department AS name, COUNT(*) AS count").
		Group("department").
		Order("department ASC").
		Scan(&rows).Error
	return rows, err
}
