package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"hrms-lite/backend/internal/dto"
	"hrms-lite/backend/internal/service"
	"hrms-lite/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportAttendance 导出考勤为 Excel
// GET /attendance/export?employee_id=&start_date=&end_date=&status=
func (h *ExportHandler) ExportAttendance(c *gin.Context) {
	var req dto.AttendanceExportRequest
	if !bindQuery(c, &req) {
		return
	}

	buf, filename, err := h.exportSvc.ExportAttendance(c.Request.Context(), &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	response.FromError(c, err)
}
