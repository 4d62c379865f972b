package export

import (
	"fmt"

	"github.com/civicworks/infra-report/internal/models"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Exporter builds xlsx workbooks of reports and their approval trails
type Exporter struct {
	logger *zap.Logger
}

// NewExporter creates a new exporter
func NewExporter(logger *zap.Logger) *Exporter {
	return &Exporter{logger: logger}
}

var reportHeader = []string{
	"ID", "Title", "Category", "Location", "Stage", "Status",
	"Reporter", "Resolved At", "Created At",
}

var approvalHeader = []string{
	"Report ID", "Stage", "Action", "Approver", "Role", "Note", "Timestamp",
}

// BuildWorkbook produces a workbook with a Reports sheet and an Approvals
// sheet. Reports are expected to carry their approval history.
func (e *Exporter) BuildWorkbook(reports []*models.Report) (*excelize.File, error) {
	f := excelize.NewFile()

	const reportSheet = "Reports"
	if err := f.SetSheetName(f.GetSheetName(0), reportSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	approvalSheet := "Approvals"
	if _, err := f.NewSheet(approvalSheet); err != nil {
		return nil, fmt.Errorf("failed to create approvals sheet: %w", err)
	}

	if err := writeRow(f, reportSheet, 1, toCells(reportHeader)); err != nil {
		return nil, err
	}
	if err := writeRow(f, approvalSheet, 1, toCells(approvalHeader)); err != nil {
		return nil, err
	}

	approvalRow := 2
	for i, report := range reports {
		resolvedAt := ""
		if report.ResolvedAt != nil {
			resolvedAt = report.ResolvedAt.Format("2006-01-02 15:04:05")
		}
		row := []interface{}{
			report.ID,
			report.Title,
			report.Category,
			report.Location,
			report.CurrentStage.String(),
			report.Status.String(),
			report.ReporterName,
			resolvedAt,
			report.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := writeRow(f, reportSheet, i+2, row); err != nil {
			return nil, err
		}

		for _, entry := range report.ApprovalHistory {
			entryRow := []interface{}{
				entry.ReportID,
				entry.Stage.String(),
				string(entry.Action),
				entry.ApproverName,
				string(entry.ApproverRole),
				entry.Note,
				entry.Timestamp.Format("2006-01-02 15:04:05"),
			}
			if err := writeRow(f, approvalSheet, approvalRow, entryRow); err != nil {
				return nil, err
			}
			approvalRow++
		}
	}

	e.logger.Info("Built export workbook", zap.Int("reports", len(reports)))
	return f, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

func toCells(header []string) []interface{} {
	cells := make([]interface{}, len(header))
	for i, h := range header {
		cells[i] = h
	}
	return cells
}
