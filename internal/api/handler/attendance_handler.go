package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"hrms-lite/backend/internal/dto"
	"hrms-lite/backend/internal/model"
	"hrms-lite/backend/internal/service"
	"hrms-lite/backend/pkg/clock"
	pkgerrors "hrms-lite/backend/pkg/errors"
	"hrms-lite/backend/pkg/response"
)

// AttendanceHandler 考勤模块 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
	clock         clock.Clock
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService, clk clock.Clock) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc, clock: clk}
}

// MarkAttendance 标记考勤
// POST /attendance
func (h *AttendanceHandler) MarkAttendance(c *gin.Context) {
	var req dto.MarkAttendanceRequest
	if !bindJSON(c, &req) {
		return
	}

	date, err := clock.ParseDate(req.Date)
	if err != nil {
		response.ValidationFailed(c, []pkgerrors.FieldError{{Field: "date", Message: "Invalid date format, expected YYYY-MM-DD"}})
		return
	}
	if date.After(clock.Today(h.clock)) {
		response.ValidationFailed(c, []pkgerrors.FieldError{{Field: "date", Message: "Attendance date cannot be in the future"}})
		return
	}

	att, err := h.attendanceSvc.Mark(c.Request.Context(), req.EmployeeID, date, model.AttendanceStatus(req.Status))
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.Created(c, att)
}

// ListAttendance 考勤列表
// GET /attendance?employee_id=&start_date=&end_date=&status=&skip=&limit=
func (h *AttendanceHandler) ListAttendance(c *gin.Context) {
	var req dto.AttendanceListRequest
	if !bindQuery(c, &req) {
		return
	}

	records, err := h.attendanceSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, records)
}

// ListEmployeeAttendance 员工考勤历史
// GET /attendance/employee/:id?start_date=&end_date=
func (h *AttendanceHandler) ListEmployeeAttendance(c *gin.Context) {
	var req dto.DateRangeRequest
	if !bindQuery(c, &req) {
		return
	}

	records, err := h.attendanceSvc.ListForEmployee(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, records)
}

// GetAttendance 考勤详情
// GET /attendance/:id
func (h *AttendanceHandler) GetAttendance(c *gin.Context) {
	att, err := h.attendanceSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, att)
}

// UpdateAttendance 更新考勤状态
// PUT /attendance/:id?status=
func (h *AttendanceHandler) UpdateAttendance(c *gin.Context) {
	var req dto.UpdateAttendanceRequest
	if !bindQuery(c, &req) {
		return
	}

	att, err := h.attendanceSvc.UpdateStatus(c.Request.Context(), c.Param("id"), model.AttendanceStatus(req.Status))
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, att)
}

// DeleteAttendance 删除考勤
// DELETE /attendance/:id
func (h *AttendanceHandler) DeleteAttendance(c *gin.Context) {
	if err := h.attendanceSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.NoContent(c)
}

// GetTodayAttendance 今日考勤花名册
// GET /attendance/today
func (h *AttendanceHandler) GetTodayAttendance(c *gin.Context) {
	roster, err := h.attendanceSvc.TodayRoster(c.Request.Context())
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, roster)
}

// ── 错误映射 ──

func (h *AttendanceHandler) handleAttendanceError(c *gin.Context, err error) {
	msg := pkgerrors.Message(err)
	switch {
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, 20001, msg)
	case errors.Is(err, service.ErrAttendanceNotFound):
		response.NotFound(c, 21001, msg)
	case errors.Is(err, service.ErrAttendanceAlreadyMarked):
		response.Conflict(c, 21002, msg)
	default:
		response.FromError(c, err)
	}
}
