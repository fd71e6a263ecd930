package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"hrms-lite/backend/config"
	"hrms-lite/backend/internal/dto"
	"hrms-lite/backend/internal/model"
	"hrms-lite/backend/internal/service"
	"hrms-lite/backend/pkg/clock"
	pkgerrors "hrms-lite/backend/pkg/errors"
	"hrms-lite/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
	RegisterValidators()
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock EmployeeService ──

type mockEmployeeService struct {
	createResult *dto.EmployeeResponse
	createErr    error
	getResult    *dto.EmployeeResponse
	getErr       error
	listResult   []dto.EmployeeResponse
	listErr      error
	updateResult *dto.EmployeeResponse
	updateErr    error
	deleteErr    error

	lastCreate *dto.CreateEmployeeRequest
	lastList   *dto.EmployeeListRequest
}

func (m *mockEmployeeService) Create(_ context.Context, req *dto.CreateEmployeeRequest) (*dto.EmployeeResponse, error) {
	m.lastCreate = req
	return m.createResult, m.createErr
}
func (m *mockEmployeeService) GetByID(_ context.Context, _ string) (*dto.EmployeeResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockEmployeeService) List(_ context.Context, req *dto.EmployeeListRequest) ([]dto.EmployeeResponse, error) {
	m.lastList = req
	return m.listResult, m.listErr
}
func (m *mockEmployeeService) Update(_ context.Context, _ string, _ *dto.UpdateEmployeeRequest) (*dto.EmployeeResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockEmployeeService) Delete(_ context.Context, _ string) error {
	return m.deleteErr
}

// ── Mock ReportService ──

type mockReportService struct {
	dashboard  *dto.DashboardStatsResponse
	summary    *dto.EmployeeSummaryResponse
	summaryErr error
}

func (m *mockReportService) DashboardStats(_ context.Context) (*dto.DashboardStatsResponse, error) {
	return m.dashboard, nil
}
func (m *mockReportService) EmployeeSummary(_ context.Context, _ string) (*dto.EmployeeSummaryResponse, error) {
	return m.summary, m.summaryErr
}

// ── Mock AttendanceService ──

type mockAttendanceService struct {
	markResult   *dto.AttendanceResponse
	markErr      error
	markCalls    int
	listResult   []dto.AttendanceResponse
	updateResult *dto.AttendanceResponse
	updateErr    error
	deleteErr    error
	roster       []dto.TodayAttendanceResponse
}

func (m *mockAttendanceService) Mark(_ context.Context, _ string, _ time.Time, _ model.AttendanceStatus) (*dto.AttendanceResponse, error) {
	m.markCalls++
	return m.markResult, m.markErr
}
func (m *mockAttendanceService) List(_ context.Context, _ *dto.AttendanceListRequest) ([]dto.AttendanceResponse, error) {
	return m.listResult, nil
}
func (m *mockAttendanceService) ListForEmployee(_ context.Context, _ string, _ *dto.DateRangeRequest) ([]dto.AttendanceResponse, error) {
	return m.listResult, nil
}
func (m *mockAttendanceService) GetByID(_ context.Context, _ string) (*dto.AttendanceResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockAttendanceService) UpdateStatus(_ context.Context, _ string, _ model.AttendanceStatus) (*dto.AttendanceResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockAttendanceService) Delete(_ context.Context, _ string) error {
	return m.deleteErr
}
func (m *mockAttendanceService) TodayRoster(_ context.Context) ([]dto.TodayAttendanceResponse, error) {
	return m.roster, nil
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportAttendance(_ context.Context, _ *dto.AttendanceExportRequest) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

var handlerToday = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type testHandlers struct {
	engine     *gin.Engine
	employee   *mockEmployeeService
	report     *mockReportService
	attendance *mockAttendanceService
	export     *mockExportService
}

func setupHandlers() *testHandlers {
	th := &testHandlers{
		employee:   &mockEmployeeService{},
		report:     &mockReportService{},
		attendance: &mockAttendanceService{},
		export:     &mockExportService{},
	}
	h := &Handler{
		System:     NewSystemHandler(&config.AppConfig{Name: "hrms-lite-api", Version: "1.0.0"}),
		Employee:   NewEmployeeHandler(th.employee, th.report),
		Attendance: NewAttendanceHandler(th.attendance, clock.Fixed(handlerToday)),
		Export:     NewExportHandler(th.export),
	}

	r := gin.New()
	r.GET("/", h.System.Root)
	r.GET("/health", h.System.Health)
	r.POST("/employees", h.Employee.CreateEmployee)
	r.GET("/employees", h.Employee.ListEmployees)
	r.GET("/employees/dashboard/stats", h.Employee.GetDashboardStats)
	r.GET("/employees/:id", h.Employee.GetEmployee)
	r.PUT("/employees/:id", h.Employee.UpdateEmployee)
	r.DELETE("/employees/:id", h.Employee.DeleteEmployee)
	r.GET("/employees/:id/summary", h.Employee.GetEmployeeSummary)
	r.POST("/attendance", h.Attendance.MarkAttendance)
	r.GET("/attendance", h.Attendance.ListAttendance)
	r.GET("/attendance/today", h.Attendance.GetTodayAttendance)
	r.GET("/attendance/export", h.Export.ExportAttendance)
	r.PUT("/attendance/:id", h.Attendance.UpdateAttendance)
	r.DELETE("/attendance/:id", h.Attendance.DeleteAttendance)
	th.engine = r
	return th
}

func (th *testHandlers) do(method, path string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	th.engine.ServeHTTP(w, req)
	return w
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// parseDetails 解析 422 响应中的字段详情
func parseDetails(t *testing.T, w *httptest.ResponseRecorder) []pkgerrors.FieldError {
	t.Helper()
	var resp struct {
		Details []pkgerrors.FieldError `json:"details"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	return resp.Details
}

func hasField(details []pkgerrors.FieldError, field string) bool {
	for _, d := range details {
		if d.Field == field {
			return true
		}
	}
	return false
}

// ═══════════════════════════════════════════════════════════
// SystemHandler Tests
// ═══════════════════════════════════════════════════════════

func TestSystemHandler_RootAndHealth(t *testing.T) {
	th := setupHandlers()

	w := th.do(http.MethodGet, "/", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Welcome to HRMS Lite API") {
		t.Errorf("根路径响应不符: %d %s", w.Code, w.Body.String())
	}

	w = th.do(http.MethodGet, "/health", nil)
	if w.Body.String() != `{"status":"healthy","service":"hrms-lite-api"}` {
		t.Errorf("健康检查响应不符: %s", w.Body.String())
	}
}

// ═══════════════════════════════════════════════════════════
// EmployeeHandler Tests
// ═══════════════════════════════════════════════════════════

func TestEmployeeHandler_Create_Success(t *testing.T) {
	th := setupHandlers()
	th.employee.createResult = &dto.EmployeeResponse{ID: "e-1", EmployeeCode: "EMP001", FullName: "John Doe"}

	w := th.do(http.MethodPost, "/employees", jsonBody(map[string]string{
		"employee_id": "emp001",
		"full_name":   "  John Doe ",
		"email":       "John@X.com",
		"department":  "Eng",
	}))
	if w.Code != http.StatusCreated {
		t.Fatalf("期望 201，实际=%d body=%s", w.Code, w.Body.String())
	}
	if th.employee.lastCreate == nil || th.employee.lastCreate.EmployeeCode != "emp001" {
		t.Error("请求体应原样传给 Service，由 Service 规范化")
	}
}

func TestEmployeeHandler_Create_Validation(t *testing.T) {
	th := setupHandlers()

	w := th.do(http.MethodPost, "/employees", jsonBody(map[string]string{
		"employee_id": "   ",
		"full_name":   "John",
		"email":       "not-an-email",
	}))
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("期望 422，实际=%d", w.Code)
	}
	details := parseDetails(t, w)
	for _, f := range []string{"employee_id", "email", "department"} {
		if !hasField(details, f) {
			t.Errorf("缺少字段 %s 的校验详情: %v", f, details)
		}
	}
	if th.employee.lastCreate != nil {
		t.Error("校验失败不应调用 Service")
	}
}

func TestEmployeeHandler_Create_BadJSON(t *testing.T) {
	th := setupHandlers()

	w := th.do(http.MethodPost, "/employees", strings.NewReader("{not json"))
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("期望 422，实际=%d", w.Code)
	}
}

func TestEmployeeHandler_Create_Conflict(t *testing.T) {
	th := setupHandlers()
	th.employee.createErr = pkgerrors.Conflict(service.ErrEmployeeCodeExists, "Employee with ID '%s' already exists", "EMP001")

	w := th.do(http.MethodPost, "/employees", jsonBody(map[string]string{
		"employee_id": "EMP001", "full_name": "J", "email": "j@x.com", "department": "Eng",
	}))
	if w.Code != http.StatusConflict {
		t.Fatalf("期望 409，实际=%d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 20002 || resp.Message != "Employee with ID 'EMP001' already exists" {
		t.Errorf("响应不符: %+v", resp)
	}
}

func TestEmployeeHandler_List_Pagination(t *testing.T) {
	th := setupHandlers()
	th.employee.listResult = []dto.EmployeeResponse{}

	w := th.do(http.MethodGet, "/employees?skip=10&limit=5&department=eng", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际=%d", w.Code)
	}
	if req := th.employee.lastList; req.GetSkip() != 10 || req.GetLimit() != 5 || req.Department != "eng" {
		t.Errorf("分页参数解析不符: %+v", req)
	}

	for _, q := range []string{"limit=0", "limit=1001", "skip=-1", "limit=abc"} {
		if w := th.do(http.MethodGet, "/employees?"+q, nil); w.Code != http.StatusUnprocessableEntity {
			t.Errorf("%s 期望 422，实际=%d", q, w.Code)
		}
	}
}

func TestEmployeeHandler_Get_NotFound(t *testing.T) {
	th := setupHandlers()
	th.employee.getErr = pkgerrors.NotFound(service.ErrEmployeeNotFound, "Employee with ID '%s' not found", "x")

	w := th.do(http.MethodGet, "/employees/x", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("期望 404，实际=%d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 20001 {
		t.Errorf("期望错误码 20001，实际=%d", resp.Code)
	}
}

func TestEmployeeHandler_Update_BlankField(t *testing.T) {
	th := setupHandlers()

	w := th.do(http.MethodPut, "/employees/e-1", jsonBody(map[string]string{"full_name": " "}))
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("期望 422，实际=%d", w.Code)
	}
	if !hasField(parseDetails(t, w), "full_name") {
		t.Error("应返回 full_name 校验详情")
	}
}

func TestEmployeeHandler_Delete(t *testing.T) {
	th := setupHandlers()

	w := th.do(http.MethodDelete, "/employees/e-1", nil)
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Errorf("期望 204 且无响应体，实际=%d %q", w.Code, w.Body.String())
	}
}

func TestEmployeeHandler_Dashboard(t *testing.T) {
	th := setupHandlers()
	th.report.dashboard = &dto.DashboardStatsResponse{
		TotalEmployees:  3,
		Departments:     []dto.DepartmentCount{},
		TodayAttendance: dto.TodayAttendanceStats{Present: 1, Absent: 1, NotMarked: 1},
		RecentEmployees: []dto.RecentEmployee{},
	}

	w := th.do(http.MethodGet, "/employees/dashboard/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("静态路由应优先于 /:id，实际=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"not_marked":1`) {
		t.Errorf("响应缺少今日统计: %s", w.Body.String())
	}
}

func TestEmployeeHandler_Summary_InternalError(t *testing.T) {
	th := setupHandlers()
	th.report.summaryErr = errors.New("db down")

	w := th.do(http.MethodGet, "/employees/e-1/summary", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("期望 500，实际=%d", w.Code)
	}
	if strings.Contains(w.Body.String(), "db down") {
		t.Error("内部错误不应泄露原因")
	}
}

func TestEmployeeHandler_UnmappedKindFallback(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"NotFound", pkgerrors.NotFound(nil, "Record '%s' not found", "x"), http.StatusNotFound, response.CodeNotFound},
		{"Conflict", pkgerrors.Conflict(nil, "Record already exists"), http.StatusConflict, response.CodeConflict},
		{"Validation", pkgerrors.Validation(pkgerrors.FieldError{Field: "email", Message: "bad"}), http.StatusUnprocessableEntity, response.CodeValidation},
		{"Unclassified", errors.New("db down"), http.StatusInternalServerError, response.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := setupHandlers()
			th.employee.getErr = tt.err

			w := th.do(http.MethodGet, "/employees/e-1", nil)
			if w.Code != tt.wantStatus {
				t.Fatalf("期望 %d，实际=%d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("期望错误码 %d，实际=%d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestEmployeeHandler_List_RepeatedReadsIdentical(t *testing.T) {
	th := setupHandlers()
	th.employee.listResult = []dto.EmployeeResponse{
		{ID: "e-2", EmployeeCode: "EMP002", FullName: "Bob", CreatedAt: "2026-03-10T10:00:00Z"},
		{ID: "e-1", EmployeeCode: "EMP001", FullName: "Alice", CreatedAt: "2026-03-09T10:00:00Z"},
	}

	first := th.do(http.MethodGet, "/employees?skip=0&limit=10", nil)
	second := th.do(http.MethodGet, "/employees?skip=0&limit=10", nil)
	if first.Code != http.StatusOK {
		t.Fatalf("期望 200，实际=%d", first.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Errorf("重复读取响应不一致:\n%s\n%s", first.Body.String(), second.Body.String())
	}
}

// ═══════════════════════════════════════════════════════════
// AttendanceHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAttendanceHandler_Mark_Success(t *testing.T) {
	th := setupHandlers()
	th.attendance.markResult = &dto.AttendanceResponse{ID: "a-1", Status: "Present", Date: "2026-03-10"}

	w := th.do(http.MethodPost, "/attendance", jsonBody(map[string]string{
		"employee_id": "e-1", "date": "2026-03-10", "status": "Present",
	}))
	if w.Code != http.StatusCreated {
		t.Fatalf("期望 201，实际=%d body=%s", w.Code, w.Body.String())
	}
}

func TestAttendanceHandler_Mark_FutureDate(t *testing.T) {
	th := setupHandlers()

	w := th.do(http.MethodPost, "/attendance", jsonBody(map[string]string{
		"employee_id": "e-1", "date": "2026-03-11", "status": "Present",
	}))
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("未来日期期望 422，实际=%d", w.Code)
	}
	if !hasField(parseDetails(t, w), "date") {
		t.Error("应返回 date 校验详情")
	}
	if th.attendance.markCalls != 0 {
		t.Error("校验失败不应调用 Service")
	}
}

func TestAttendanceHandler_Mark_InvalidInput(t *testing.T) {
	th := setupHandlers()

	w := th.do(http.MethodPost, "/attendance", jsonBody(map[string]string{
		"employee_id": "e-1", "date": "10/03/2026", "status": "Late",
	}))
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("期望 422，实际=%d", w.Code)
	}
	details := parseDetails(t, w)
	if !hasField(details, "date") || !hasField(details, "status") {
		t.Errorf("应同时返回 date 与 status 校验详情: %v", details)
	}
}

func TestAttendanceHandler_Mark_AlreadyMarked(t *testing.T) {
	th := setupHandlers()
	th.attendance.markErr = pkgerrors.Conflict(service.ErrAttendanceAlreadyMarked,
		"Attendance already marked for employee '%s' on %s", "EMP001", "2026-03-10")

	w := th.do(http.MethodPost, "/attendance", jsonBody(map[string]string{
		"employee_id": "e-1", "date": "2026-03-10", "status": "Present",
	}))
	if w.Code != http.StatusConflict {
		t.Fatalf("期望 409，实际=%d", w.Code)
	}
	if resp := parseResponse(w); !strings.Contains(resp.Message, "already marked") {
		t.Errorf("提示应包含 already marked: %s", resp.Message)
	}
}

func TestAttendanceHandler_Update_StatusQuery(t *testing.T) {
	th := setupHandlers()
	th.attendance.updateResult = &dto.AttendanceResponse{ID: "a-1", Status: "Absent"}

	if w := th.do(http.MethodPut, "/attendance/a-1?status=Absent", nil); w.Code != http.StatusOK {
		t.Errorf("期望 200，实际=%d", w.Code)
	}
	if w := th.do(http.MethodPut, "/attendance/a-1", nil); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("缺少 status 期望 422，实际=%d", w.Code)
	}
	if w := th.do(http.MethodPut, "/attendance/a-1?status=Late", nil); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("非法 status 期望 422，实际=%d", w.Code)
	}
}

func TestAttendanceHandler_Delete_NotFound(t *testing.T) {
	th := setupHandlers()
	th.attendance.deleteErr = pkgerrors.NotFound(service.ErrAttendanceNotFound, "Attendance record with ID '%s' not found", "a-1")

	w := th.do(http.MethodDelete, "/attendance/a-1", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("期望 404，实际=%d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 21001 {
		t.Errorf("期望错误码 21001，实际=%d", resp.Code)
	}
}

func TestAttendanceHandler_Today(t *testing.T) {
	th := setupHandlers()
	th.attendance.roster = []dto.TodayAttendanceResponse{{EmployeeCode: "EMP001", Status: model.StatusNotMarked}}

	w := th.do(http.MethodGet, "/attendance/today", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Not Marked") {
		t.Errorf("花名册响应不符: %d %s", w.Code, w.Body.String())
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ExportAttendance(t *testing.T) {
	th := setupHandlers()
	th.export.buf = bytes.NewBufferString("xlsx-bytes")
	th.export.filename = "attendance_2026-03-10.xlsx"

	w := th.do(http.MethodGet, "/attendance/export?status=Present", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("Content-Type 不符: %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "attendance_2026-03-10.xlsx") {
		t.Errorf("Content-Disposition 不符: %s", cd)
	}
}

func TestExportHandler_ExportAttendance_BadStatus(t *testing.T) {
	th := setupHandlers()

	w := th.do(http.MethodGet, "/attendance/export?status=Maybe", nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("期望 422，实际=%d", w.Code)
	}
}
