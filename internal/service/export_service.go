package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"hrms-lite/backend/internal/dto"
	"hrms-lite/backend/internal/model"
	"hrms-lite/backend/internal/repository"
	"hrms-lite/backend/pkg/clock"
	"hrms-lite/backend/pkg/stats"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("failed to generate spreadsheet")

const (
	// exportMaxRows 单次导出的记录上限
	exportMaxRows = 10000

	recordsSheet = "Attendance"
	summarySheet = "Summary"
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置响应头后写入 Response。
// 工作簿包含两个 Sheet：
//   - Attendance：逐条考勤（日期、工号、姓名、部门、状态）
//   - Summary：按员工汇总出勤/缺勤与出勤率
type ExportService interface {
	// ExportAttendance 按与考勤列表相同的过滤条件导出（仅在职员工）
	ExportAttendance(ctx context.Context, req *dto.AttendanceExportRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	clock  clock.Clock
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, clk clock.Clock, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, clock: clk, logger: logger}
}

// summaryRow Summary Sheet 的一行
type summaryRow struct {
	code    string
	name    string
	dept    string
	present int64
	absent  int64
}

func (s *exportService) ExportAttendance(ctx context.Context, req *dto.AttendanceExportRequest) (*bytes.Buffer, string, error) {
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, "", err
	}

	// 1. 查询考勤；员工 ID 格式不合法时导出空表
	var records []model.Attendance
	if employeeKey, ok := employeeFilter(req.EmployeeID); ok {
		filters := &repository.AttendanceListFilters{
			EmployeeID: employeeKey,
			StartDate:  start,
			EndDate:    end,
			Status:     model.AttendanceStatus(req.Status),
		}
		records, err = s.repo.Attendance.List(ctx, filters, 0, exportMaxRows)
		if err != nil {
			s.logger.Error("查询导出考勤失败", zap.Error(err))
			return nil, "", errors.Wrap(err, "list attendance for export")
		}
	}

	// 2. 按员工汇总，保持首次出现的顺序
	order := lo.Uniq(lo.Map(records, func(a model.Attendance, _ int) string { return a.EmployeeID }))
	grouped := lo.GroupBy(records, func(a model.Attendance) string { return a.EmployeeID })
	summaries := lo.Map(order, func(id string, _ int) summaryRow {
		rows := grouped[id]
		row := summaryRow{code: unknownEmployee, name: unknownEmployee}
		if emp := rows[0].Employee; emp != nil {
			row.code, row.name, row.dept = emp.EmployeeCode, emp.FullName, emp.Department
		}
		row.present = int64(lo.CountBy(rows, func(a model.Attendance) bool { return a.Status == model.StatusPresent }))
		row.absent = int64(len(rows)) - row.present
		return row
	})

	// 3. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", recordsSheet); err != nil {
		return nil, "", s.generateFailed(err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, "", s.generateFailed(err)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// Attendance Sheet
	writeRow(f, recordsSheet, 1, "Date", "Employee ID", "Full Name", "Department", "Status")
	_ = f.SetCellStyle(recordsSheet, "A1", "E1", headerStyle)
	_ = f.SetColWidth(recordsSheet, "A", "A", 12)
	_ = f.SetColWidth(recordsSheet, "B", "B", 14)
	_ = f.SetColWidth(recordsSheet, "C", "D", 24)
	_ = f.SetColWidth(recordsSheet, "E", "E", 10)
	for i, a := range records {
		code, name, dept := unknownEmployee, unknownEmployee, ""
		if a.Employee != nil {
			code, name, dept = a.Employee.EmployeeCode, a.Employee.FullName, a.Employee.Department
		}
		writeRow(f, recordsSheet, i+2, clock.FormatDate(a.Day()), code, name, dept, string(a.Status))
	}

	// Summary Sheet
	writeRow(f, summarySheet, 1, "Employee ID", "Full Name", "Department", "Present", "Absent", "Attendance Rate (%)")
	_ = f.SetCellStyle(summarySheet, "A1", "F1", headerStyle)
	_ = f.SetColWidth(summarySheet, "A", "A", 14)
	_ = f.SetColWidth(summarySheet, "B", "C", 24)
	_ = f.SetColWidth(summarySheet, "D", "F", 18)
	for i, r := range summaries {
		writeRow(f, summarySheet, i+2, r.code, r.name, r.dept, r.present, r.absent, stats.Rate(r.present, r.present+r.absent))
	}

	f.SetActiveSheet(0)

	// 4. 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, "", s.generateFailed(err)
	}

	s.logger.Info("考勤已导出", zap.Int("records", len(records)), zap.Int("employees", len(summaries)))
	return buf, exportFilename(req, clock.Today(s.clock)), nil
}

func (s *exportService) generateFailed(err error) error {
	s.logger.Error("生成 Excel 失败", zap.Error(err))
	return errors.Mark(errors.Wrap(err, "generate spreadsheet"), ErrExportGenerateFail)
}

// ── 辅助函数 ──

// exportFilename 有日期范围时以范围命名，否则以导出当天命名
func exportFilename(req *dto.AttendanceExportRequest, today time.Time) string {
	switch {
	case req.StartDate != "" && req.EndDate != "":
		return fmt.Sprintf("attendance_%s_%s.xlsx", req.StartDate, req.EndDate)
	case req.StartDate != "":
		return fmt.Sprintf("attendance_from_%s.xlsx", req.StartDate)
	case req.EndDate != "":
		return fmt.Sprintf("attendance_until_%s.xlsx", req.EndDate)
	default:
		return fmt.Sprintf("attendance_%s.xlsx", clock.FormatDate(today))
	}
}

func writeRow(f *excelize.File, sheet string, row int, values ...interface{}) {
	cell, _ := excelize.CoordinatesToCellName(1, row)
	_ = f.SetSheetRow(sheet, cell, &values)
}
