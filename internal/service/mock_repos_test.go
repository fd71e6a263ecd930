package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hrms-lite/backend/internal/model"
	"hrms-lite/backend/internal/repository"
	"hrms-lite/backend/pkg/clock"
)

// mockEpoch mock 仓储分配 CreatedAt 的起点，每次插入递增一秒
var mockEpoch = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

// ── Mock EmployeeRepository ──

type mockEmployeeRepo struct {
	employees map[string]*model.Employee
	seq       int
	// dupOnCreate 模拟并发写入触发唯一索引
	dupOnCreate bool
	// failWith 非空时所有方法返回该错误
	failWith error
}

func newMockEmployeeRepo() *mockEmployeeRepo {
	return &mockEmployeeRepo{employees: make(map[string]*model.Employee)}
}

// add 直接写入一条员工记录，返回其 ID
func (m *mockEmployeeRepo) add(code, name, email, dept string, active bool) string {
	m.seq++
	emp := &model.Employee{
		ID:           uuid.NewString(),
		EmployeeCode: code,
		FullName:     name,
		Email:        email,
		Department:   dept,
		IsActive:     active,
	}
	emp.CreatedAt = mockEpoch.Add(time.Duration(m.seq) * time.Second)
	emp.UpdatedAt = emp.CreatedAt
	m.employees[emp.ID] = emp
	return emp.ID
}

func (m *mockEmployeeRepo) Create(_ context.Context, emp *model.Employee) error {
	if m.failWith != nil {
		return m.failWith
	}
	if m.dupOnCreate {
		return gorm.ErrDuplicatedKey
	}
	m.seq++
	if emp.ID == "" {
		emp.ID = uuid.NewString()
	}
	emp.CreatedAt = mockEpoch.Add(time.Duration(m.seq) * time.Second)
	emp.UpdatedAt = emp.CreatedAt
	cp := *emp
	m.employees[emp.ID] = &cp
	return nil
}

func (m *mockEmployeeRepo) find(pred func(e *model.Employee) bool) (*model.Employee, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, e := range m.sorted() {
		if pred(e) {
			cp := *e
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmployeeRepo) GetByID(_ context.Context, id string) (*model.Employee, error) {
	return m.find(func(e *model.Employee) bool { return e.ID == id })
}

func (m *mockEmployeeRepo) GetActiveByID(_ context.Context, id string) (*model.Employee, error) {
	return m.find(func(e *model.Employee) bool { return e.ID == id && e.IsActive })
}

func (m *mockEmployeeRepo) GetActiveByCode(_ context.Context, code string) (*model.Employee, error) {
	return m.find(func(e *model.Employee) bool { return e.EmployeeCode == code && e.IsActive })
}

func (m *mockEmployeeRepo) GetActiveByEmail(_ context.Context, email string) (*model.Employee, error) {
	return m.find(func(e *model.Employee) bool { return e.Email == email && e.IsActive })
}

func (m *mockEmployeeRepo) GetOtherByEmail(_ context.Context, email, excludeID string) (*model.Employee, error) {
	return m.find(func(e *model.Employee) bool { return e.Email == email && e.ID != excludeID })
}

// sorted 按创建时间倒序
func (m *mockEmployeeRepo) sorted() []*model.Employee {
	result := make([]*model.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

func (m *mockEmployeeRepo) List(_ context.Context, filters *repository.EmployeeListFilters, offset, limit int) ([]model.Employee, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	contains := func(s, sub string) bool {
		return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
	}

	var matched []model.Employee
	for _, e := range m.sorted() {
		if !e.IsActive {
			continue
		}
		if filters != nil {
			if filters.Department != "" && !contains(e.Department, filters.Department) {
				continue
			}
			if q := filters.Search; q != "" &&
				!contains(e.FullName, q) && !contains(e.EmployeeCode, q) && !contains(e.Email, q) {
				continue
			}
		}
		matched = append(matched, *e)
	}

	if offset >= len(matched) {
		return []model.Employee{}, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (m *mockEmployeeRepo) ListActive(ctx context.Context) ([]model.Employee, error) {
	return m.List(ctx, nil, 0, len(m.employees))
}

func (m *mockEmployeeRepo) ListRecent(ctx context.Context, limit int) ([]model.Employee, error) {
	return m.List(ctx, nil, 0, limit)
}

func (m *mockEmployeeRepo) Update(_ context.Context, emp *model.Employee) error {
	if m.failWith != nil {
		return m.failWith
	}
	emp.UpdatedAt = emp.CreatedAt.Add(time.Minute)
	cp := *emp
	m.employees[emp.ID] = &cp
	return nil
}

func (m *mockEmployeeRepo) Delete(_ context.Context, id string) error {
	if m.failWith != nil {
		return m.failWith
	}
	if _, ok := m.employees[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.employees, id)
	return nil
}

func (m *mockEmployeeRepo) CountActive(_ context.Context) (int64, error) {
	if m.failWith != nil {
		return 0, m.failWith
	}
	var n int64
	for _, e := range m.employees {
		if e.IsActive {
			n++
		}
	}
	return n, nil
}

func (m *mockEmployeeRepo) CountByDepartment(_ context.Context) ([]repository.DepartmentCount, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	counts := make(map[string]int64)
	for _, e := range m.employees {
		if e.IsActive {
			counts[e.Department]++
		}
	}
	result := make([]repository.DepartmentCount, 0, len(counts))
	for name, c := range counts {
		result = append(result, repository.DepartmentCount{Name: name, Count: c})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	records   map[string]*model.Attendance
	employees *mockEmployeeRepo // 用于 List 的在职过滤与预加载
	seq       int
	failWith  error
}

func newMockAttendanceRepo(employees *mockEmployeeRepo) *mockAttendanceRepo {
	return &mockAttendanceRepo{records: make(map[string]*model.Attendance), employees: employees}
}

func (m *mockAttendanceRepo) Create(_ context.Context, att *model.Attendance) error {
	if m.failWith != nil {
		return m.failWith
	}
	for _, r := range m.records {
		if r.EmployeeID == att.EmployeeID && r.Day().Equal(att.Day()) {
			return gorm.ErrDuplicatedKey
		}
	}
	m.seq++
	if att.ID == "" {
		att.ID = uuid.NewString()
	}
	att.CreatedAt = mockEpoch.Add(time.Duration(m.seq) * time.Second)
	cp := *att
	cp.Employee = nil
	m.records[att.ID] = &cp
	return nil
}

func (m *mockAttendanceRepo) GetByID(_ context.Context, id string) (*model.Attendance, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	if r, ok := m.records[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) GetByEmployeeAndDate(_ context.Context, employeeID string, date time.Time) (*model.Attendance, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, r := range m.records {
		if r.EmployeeID == employeeID && r.Day().Equal(date) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// sorted 按日期倒序，同日按创建时间倒序
func (m *mockAttendanceRepo) sorted() []model.Attendance {
	result := make([]model.Attendance, 0, len(m.records))
	for _, r := range m.records {
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Day().Equal(result[j].Day()) {
			return result[i].Day().After(result[j].Day())
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

func inRange(d time.Time, start, end *time.Time) bool {
	if start != nil && d.Before(*start) {
		return false
	}
	if end != nil && d.After(*end) {
		return false
	}
	return true
}

func (m *mockAttendanceRepo) List(_ context.Context, filters *repository.AttendanceListFilters, offset, limit int) ([]model.Attendance, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var matched []model.Attendance
	for _, r := range m.sorted() {
		emp, ok := m.employees.employees[r.EmployeeID]
		if !ok || !emp.IsActive {
			continue
		}
		if filters != nil {
			if filters.EmployeeID != "" && r.EmployeeID != filters.EmployeeID {
				continue
			}
			if filters.Status != "" && r.Status != filters.Status {
				continue
			}
			if !inRange(r.Day(), filters.StartDate, filters.EndDate) {
				continue
			}
		}
		empCopy := *emp
		r.Employee = &empCopy
		matched = append(matched, r)
	}

	if offset >= len(matched) {
		return []model.Attendance{}, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (m *mockAttendanceRepo) ListByEmployee(_ context.Context, employeeID string, start, end *time.Time) ([]model.Attendance, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var result []model.Attendance
	for _, r := range m.sorted() {
		if r.EmployeeID == employeeID && inRange(r.Day(), start, end) {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockAttendanceRepo) ListByDate(_ context.Context, date time.Time) ([]model.Attendance, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var result []model.Attendance
	for _, r := range m.sorted() {
		if r.Day().Equal(date) {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockAttendanceRepo) UpdateStatus(_ context.Context, id string, status model.AttendanceStatus) error {
	if m.failWith != nil {
		return m.failWith
	}
	r, ok := m.records[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.Status = status
	return nil
}

func (m *mockAttendanceRepo) Delete(_ context.Context, id string) error {
	if m.failWith != nil {
		return m.failWith
	}
	if _, ok := m.records[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *mockAttendanceRepo) DeleteByEmployee(_ context.Context, employeeID string) (int64, error) {
	if m.failWith != nil {
		return 0, m.failWith
	}
	var n int64
	for id, r := range m.records {
		if r.EmployeeID == employeeID {
			delete(m.records, id)
			n++
		}
	}
	return n, nil
}

func (m *mockAttendanceRepo) CountByStatus(_ context.Context, filters *repository.StatusCountFilters) (repository.StatusCounts, error) {
	var counts repository.StatusCounts
	if m.failWith != nil {
		return counts, m.failWith
	}
	for _, r := range m.records {
		if filters != nil {
			if filters.EmployeeID != "" && r.EmployeeID != filters.EmployeeID {
				continue
			}
			if filters.Date != nil && !r.Day().Equal(*filters.Date) {
				continue
			}
		}
		switch r.Status {
		case model.StatusPresent:
			counts.Present++
		case model.StatusAbsent:
			counts.Absent++
		}
	}
	return counts, nil
}

// ── 测试辅助 ──

// inlineTx 直接在同一聚合上执行 fn，mock 仓储没有回滚语义
type inlineTx struct {
	repo *repository.Repository
}

func (t inlineTx) Transaction(_ context.Context, fn func(tx *repository.Repository) error) error {
	return fn(t.repo)
}

// testToday 测试使用的固定“今天”
var testToday = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

type testEnv struct {
	svc        *Service
	employees  *mockEmployeeRepo
	attendance *mockAttendanceRepo
}

func setupTestEnv() *testEnv {
	employees := newMockEmployeeRepo()
	attendance := newMockAttendanceRepo(employees)
	repo := &repository.Repository{
		Employee:   employees,
		Attendance: attendance,
	}
	repo.Tx = inlineTx{repo: repo}
	// 固定时钟落在 testToday 当天的下午
	clk := clock.Fixed(testToday.Add(15 * time.Hour))
	return &testEnv{
		svc:        NewService(repo, clk, zap.NewNop()),
		employees:  employees,
		attendance: attendance,
	}
}
