package report

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/meetinghours/attendance-backend/internal/domain/metrics"
	"github.com/meetinghours/attendance-backend/internal/domain/report"
	"github.com/xuri/excelize/v2"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	sheetName       = "Compliance"
)

var exportHeader = []interface{}{
	"Username",
	"Email",
	"Regular %",
	"Regular status",
	"Regular attended (h)",
	"Regular total (h)",
	"Regular excused (h)",
	"Outreach attended (h)",
	"Outreach total (h)",
	"Meets team requirement",
	"Meets travel requirement",
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ExportPeriodReport implements report.ReportService.
func (s *ReportServiceImpl) ExportPeriodReport(ctx context.Context, req report.PeriodReportRequest) (report.ExportFile, error) {
	rep, err := s.GeneratePeriodReport(ctx, req)
	if err != nil {
		return report.ExportFile{}, err
	}

	content, err := renderWorkbook(rep)
	if err != nil {
		return report.ExportFile{}, fmt.Errorf("%w: %w", report.ErrReportGenerationFailed, err)
	}

	name := strings.Trim(unsafeFilenameChars.ReplaceAllString(strings.ToLower(rep.Period.Name), "-"), "-")
	if name == "" {
		name = rep.Period.ID
	}

	return report.ExportFile{
		Filename:    fmt.Sprintf("compliance-%s.xlsx", name),
		ContentType: xlsxContentType,
		Content:     content,
	}, nil
}

func renderWorkbook(rep report.PeriodReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(sheetName, "A1", &exportHeader); err != nil {
		return nil, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheetName, "A1", "K1", headerStyle); err != nil {
		return nil, err
	}

	for i, row := range rep.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []interface{}{
			row.Username,
			row.Email,
			percentageCell(row.Metrics.Regular.Percentage),
			string(row.Metrics.Regular.Percentage.Status),
			row.Metrics.Regular.AttendedHours,
			row.Metrics.Regular.TotalHours,
			row.Metrics.Regular.ExcusedHours,
			row.Metrics.Outreach.AttendedHours,
			row.Metrics.Outreach.TotalHours,
			yesNo(row.Verdict.MeetsTeamRequirement),
			yesNo(row.Verdict.MeetsTravelRequirement),
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(sheetName, "A", "B", 28); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheetName, "C", "K", 18); err != nil {
		return nil, err
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// percentageCell leaves not-applicable percentages blank.
func percentageCell(p metrics.Percentage) interface{} {
	if v, ok := p.Get(); ok {
		return v
	}
	return ""
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
