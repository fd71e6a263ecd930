package dto

// ── 报表模块 DTO ──

// DepartmentCount 部门在职人数
type DepartmentCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// TodayAttendanceStats 今日考勤汇总
// NotMarked = 在职人数 - Present - Absent，数据异常时可能为负，不做截断
type TodayAttendanceStats struct {
	Present   int64 `json:"present"`
	Absent    int64 `json:"absent"`
	NotMarked int64 `json:"not_marked"`
}

// RecentEmployee 仪表盘最近入职员工
type RecentEmployee struct {
	ID           string `json:"id"`
	EmployeeCode string `json:"employee_id"`
	FullName     string `json:"full_name"`
	Department   string `json:"department"`
	CreatedAt    string `json:"created_at"`
}

// DashboardStatsResponse 仪表盘统计
type DashboardStatsResponse struct {
	TotalEmployees        int64                `json:"total_employees"`
	Departments           []DepartmentCount    `json:"departments"`
	TodayAttendance       TodayAttendanceStats `json:"today_attendance"`
	OverallAttendanceRate float64              `json:"overall_attendance_rate"`
	RecentEmployees       []RecentEmployee     `json:"recent_employees"`
}

// EmployeeSummaryResponse 员工考勤汇总
type EmployeeSummaryResponse struct {
	EmployeeID     string  `json:"employee_id"`
	EmployeeCode   string  `json:"employee_code"`
	FullName       string  `json:"full_name"`
	Department     string  `json:"department"`
	TotalPresent   int64   `json:"total_present"`
	TotalAbsent    int64   `json:"total_absent"`
	AttendanceRate float64 `json:"attendance_rate"`
}

// AttendanceExportRequest 考勤导出过滤条件
type AttendanceExportRequest struct {
	EmployeeID string `form:"employee_id"`
	StartDate  string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate    string `form:"end_date"   binding:"omitempty,datetime=2006-01-02"`
	Status     string `form:"status"     binding:"omitempty,attstatus"`
}
