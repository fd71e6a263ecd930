package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"hrms-lite/backend/internal/dto"
	"hrms-lite/backend/internal/service"
	pkgerrors "hrms-lite/backend/pkg/errors"
	"hrms-lite/backend/pkg/response"
)

// EmployeeHandler 员工模块 HTTP 处理器（含员工维度报表）
type EmployeeHandler struct {
	employeeSvc service.EmployeeService
	reportSvc   service.ReportService
}

// NewEmployeeHandler 创建 EmployeeHandler
func NewEmployeeHandler(employeeSvc service.EmployeeService, reportSvc service.ReportService) *EmployeeHandler {
	return &EmployeeHandler{employeeSvc: employeeSvc, reportSvc: reportSvc}
}

// CreateEmployee 创建员工
// POST /employees
func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	var req dto.CreateEmployeeRequest
	if !bindJSON(c, &req) {
		return
	}

	emp, err := h.employeeSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}

	response.Created(c, emp)
}

// ListEmployees 员工列表
// GET /employees?department=&search=&skip=&limit=
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	var req dto.EmployeeListRequest
	if !bindQuery(c, &req) {
		return
	}

	emps, err := h.employeeSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}

	response.OK(c, emps)
}

// GetEmployee 员工详情
// GET /employees/:id
func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	emp, err := h.employeeSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}

	response.OK(c, emp)
}

// UpdateEmployee 部分更新员工
// PUT /employees/:id
func (h *EmployeeHandler) UpdateEmployee(c *gin.Context) {
	var req dto.UpdateEmployeeRequest
	if !bindJSON(c, &req) {
		return
	}

	emp, err := h.employeeSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}

	response.OK(c, emp)
}

// DeleteEmployee 删除员工及其全部考勤
// DELETE /employees/:id
func (h *EmployeeHandler) DeleteEmployee(c *gin.Context) {
	if err := h.employeeSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleEmployeeError(c, err)
		return
	}

	response.NoContent(c)
}

// GetEmployeeSummary 员工考勤汇总
// GET /employees/:id/summary
func (h *EmployeeHandler) GetEmployeeSummary(c *gin.Context) {
	summary, err := h.reportSvc.EmployeeSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}

	response.OK(c, summary)
}

// GetDashboardStats 仪表盘统计
// GET /employees/dashboard/stats
func (h *EmployeeHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.reportSvc.DashboardStats(c.Request.Context())
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}

	response.OK(c, stats)
}

// ── 错误映射 ──

func (h *EmployeeHandler) handleEmployeeError(c *gin.Context, err error) {
	msg := pkgerrors.Message(err)
	switch {
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, 20001, msg)
	case errors.Is(err, service.ErrEmployeeCodeExists):
		response.Conflict(c, 20002, msg)
	case errors.Is(err, service.ErrEmployeeEmailExists):
		response.Conflict(c, 20003, msg)
	case errors.Is(err, service.ErrEmployeeExists):
		response.Conflict(c, 20004, msg)
	default:
		response.FromError(c, err)
	}
}
