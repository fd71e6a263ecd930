package dto

// ── 考勤模块 DTO ──

// MarkAttendanceRequest 标记考勤请求
type MarkAttendanceRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,notblank"`
	Date       string `json:"date"        binding:"required,datetime=2006-01-02"`
	Status     string `json:"status"      binding:"required,attstatus"`
}

// UpdateAttendanceRequest 更新考勤状态（query 参数）
type UpdateAttendanceRequest struct {
	Status string `form:"status" binding:"required,attstatus"`
}

// AttendanceListRequest 考勤列表查询参数
type AttendanceListRequest struct {
	PaginationRequest
	EmployeeID string `form:"employee_id"`
	StartDate  string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate    string `form:"end_date"   binding:"omitempty,datetime=2006-01-02"`
	Status     string `form:"status"     binding:"omitempty,attstatus"`
}

// DateRangeRequest 员工考勤历史的日期过滤
type DateRangeRequest struct {
	StartDate string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date"   binding:"omitempty,datetime=2006-01-02"`
}

// AttendanceResponse 考勤记录响应（附带员工姓名与工号）
type AttendanceResponse struct {
	ID           string `json:"id"`
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	EmployeeCode string `json:"employee_employee_id"`
	Date         string `json:"date"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
}

// TodayAttendanceResponse 今日花名册条目
type TodayAttendanceResponse struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeCode string `json:"employee_code"`
	FullName     string `json:"full_name"`
	Department   string `json:"department"`
	Date         string `json:"date"`
	Status       string `json:"status"`
}
