package dto

// ── 员工模块 DTO ──

// CreateEmployeeRequest 创建员工请求
type CreateEmployeeRequest struct {
	EmployeeCode string `json:"employee_id" binding:"required,notblank,max=20"`
	FullName     string `json:"full_name"   binding:"required,notblank,max=100"`
	Email        string `json:"email"       binding:"required,email,max=255"`
	Department   string `json:"department"  binding:"required,notblank,max=100"`
}

// UpdateEmployeeRequest 部分更新员工请求，未出现的字段保持不变
type UpdateEmployeeRequest struct {
	FullName   *string `json:"full_name"  binding:"omitempty,notblank,max=100"`
	Email      *string `json:"email"      binding:"omitempty,email,max=255"`
	Department *string `json:"department" binding:"omitempty,notblank,max=100"`
}

// EmployeeListRequest 员工列表查询参数
type EmployeeListRequest struct {
	PaginationRequest
	Department string `form:"department" binding:"omitempty,max=100"`
	Search     string `form:"search"     binding:"omitempty,max=100"`
}

// EmployeeResponse 员工信息响应
type EmployeeResponse struct {
	ID           string  `json:"id"`
	EmployeeCode string  `json:"employee_id"`
	FullName     string  `json:"full_name"`
	Email        string  `json:"email"`
	Department   string  `json:"department"`
	IsActive     bool    `json:"is_active"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    *string `json:"updated_at"`
}
