package report

import "context"

// ReportService defines the interface for report generation
type ReportService interface {
	// GeneratePeriodReport computes metrics for every user in a period,
	// sorted by regular percentage with not-applicable rows last.
	GeneratePeriodReport(ctx context.Context, req PeriodReportRequest) (PeriodReport, error)

	// ExportPeriodReport renders the period report as an XLSX workbook.
	ExportPeriodReport(ctx context.Context, req PeriodReportRequest) (ExportFile, error)
}
