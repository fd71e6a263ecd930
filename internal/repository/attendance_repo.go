package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"hrms-lite/backend/internal/model"
)

const dateLayout = "2006-01-02"

// AttendanceListFilters 考勤列表过滤条件，全部 AND 组合
type AttendanceListFilters struct {
	EmployeeID string
	StartDate  *time.Time
	EndDate    *time.Time
	Status     model.AttendanceStatus
}

// StatusCountFilters 按状态计数的范围
type StatusCountFilters struct {
	EmployeeID string
	Date       *time.Time
}

// StatusCounts 各状态的考勤条数
type StatusCounts struct {
	Present int64
	Absent  int64
}

// Total 考勤总条数
func (c StatusCounts) Total() int64 {
	return c.Present + c.Absent
}

// AttendanceRepository 考勤数据访问接口
type AttendanceRepository interface {
	Create(ctx context.Context, att *model.Attendance) error
	GetByID(ctx context.Context, id string) (*model.Attendance, error)
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*model.Attendance, error)
	// List 仅返回在职员工的考勤，预加载 Employee
	List(ctx context.Context, filters *AttendanceListFilters, offset, limit int) ([]model.Attendance, error)
	// ListByEmployee 不区分员工在职状态
	ListByEmployee(ctx context.Context, employeeID string, start, end *time.Time) ([]model.Attendance, error)
	ListByDate(ctx context.Context, date time.Time) ([]model.Attendance, error)
	UpdateStatus(ctx context.Context, id string, status model.AttendanceStatus) error
	Delete(ctx context.Context, id string) error
	DeleteByEmployee(ctx context.Context, employeeID string) (int64, error)
	CountByStatus(ctx context.Context, filters *StatusCountFilters) (StatusCounts, error)
}

// attendanceRepo AttendanceRepository 的 GORM 实现
type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) Create(ctx context.Context, att *model.Attendance) error {
	return r.db.WithContext(ctx).Create(att).Error
}

func (r *attendanceRepo) GetByID(ctx context.Context, id string) (*model.Attendance, error) {
	var att model.Attendance
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&att).Error
	if err != nil {
		return nil, err
	}
	return &att, nil
}

func (r *attendanceRepo) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*model.Attendance, error) {
	var att model.Attendance
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND date = ?", employeeID, date.Format(dateLayout)).
		First(&att).Error
	if err != nil {
		return nil, err
	}
	return &att, nil
}

func (r *attendanceRepo) List(ctx context.Context, filters *AttendanceListFilters, offset, limit int) ([]model.Attendance, error) {
	var records []model.Attendance

	db := r.db.WithContext(ctx).
		Joins("JOIN employees ON employees.id = attendance.employee_id AND employees.is_active = ?", true).
		Preload("Employee")

	if filters != nil {
		if filters.EmployeeID != "" {
			db = db.Where("attendance.employee_id = ?", filters.EmployeeID)
		}
		if filters.StartDate != nil {
			db = db.Where("attendance.date >= ?", filters.StartDate.Format(dateLayout))
		}
		if filters.EndDate != nil {
			db = db.Where("attendance.date <= ?", filters.EndDate.Format(dateLayout))
		}
		if filters.Status != "" {
			db = db.Where("attendance.status = ?", filters.Status)
		}
	}

	err := db.
		Order("attendance.date DESC").Order("attendance.created_at DESC").
		Offset(offset).Limit(limit).
		Find(&records).Error
	return records, err
}

func (r *attendanceRepo) ListByEmployee(ctx context.Context, employeeID string, start, end *time.Time) ([]model.Attendance, error) {
	var records []model.Attendance

	db := r.db.WithContext(ctx).Where("employee_id = ?", employeeID)
	if start != nil {
		db = db.Where("date >= ?", start.Format(dateLayout))
	}
	if end != nil {
		db = db.Where("date <= ?", end.Format(dateLayout))
	}

	err := db.
		Order("date DESC").Order("created_at DESC").
		Find(&records).Error
	return records, err
}

func (r *attendanceRepo) ListByDate(ctx context.Context, date time.Time) ([]model.Attendance, error) {
	var records []model.Attendance
	err := r.db.WithContext(ctx).
		Where("date = ?", date.Format(dateLayout)).
		Find(&records).Error
	return records, err
}

func (r *attendanceRepo) UpdateStatus(ctx context.Context, id string, status model.AttendanceStatus) error {
	res := r.db.WithContext(ctx).
		Model(&model.Attendance{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *attendanceRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Attendance{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *attendanceRepo) DeleteByEmployee(ctx context.Context, employeeID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Delete(&model.Attendance{})
	return res.RowsAffected, res.Error
}

func (r *attendanceRepo) CountByStatus(ctx context.Context, filters *StatusCountFilters) (StatusCounts, error) {
	var rows []struct {
		Status model.AttendanceStatus
		Count  int64
	}

	db := r.db.WithContext(ctx).Model(&model.Attendance{})
	if filters != nil {
		if filters.EmployeeID != "" {
			db = db.Where("employee_id = ?", filters.EmployeeID)
		}
		if filters.Date != nil {
			db = db.Where("date = ?", filters.Date.Format(dateLayout))
		}
	}

	var counts StatusCounts
	err := db.
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return counts, err
	}

	for _, row := range rows {
		switch row.Status {
		case model.StatusPresent:
			counts.Present = row.Count
		case model.StatusAbsent:
			counts.Absent = row.Count
		}
	}
	return counts, nil
}
