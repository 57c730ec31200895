package services

import (
	"fmt"

	"github.com/cmsops/optimove-export/internal/models"
	"github.com/xuri/excelize/v2"
)

// ReportService builds a downloadable workbook summarizing the combination
// grid and the latest export outcomes. Generated on the fly, nothing is
// stored.
type ReportService struct{}

func NewReportService() *ReportService {
	return &ReportService{}
}

const reportSheet = "Export Summary"

// BuildWorkbook renders one row per staged item+language, joined with the
// last export outcome for that pair when one exists.
func (s *ReportService) BuildWorkbook(ws *models.Workspace) (*excelize.File, error) {
	ws.Lock()
	defer ws.Unlock()

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return nil, fmt.Errorf("failed to name report sheet: %w", err)
	}

	headers := []string{"Item ID", "Item Name", "Mailing Site", "Language", "Export Status", "Template ID", "Message"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to compute header cell: %w", err)
		}
		if err := f.SetCellValue(reportSheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	outcomes := make(map[string]models.ExportOutcome, len(ws.ExportOutcomes))
	for _, outcome := range ws.ExportOutcomes {
		outcomes[outcome.ItemID+"|"+outcome.Language] = outcome
	}

	rowIdx := 2
	for _, row := range ws.Combinations {
		for _, lang := range row.SelectedLanguages {
			values := []interface{}{
				row.MailingItem.ID,
				row.MailingItem.Name,
				row.MailingItem.Site,
				lang.Code,
				"not exported",
				"",
				"",
			}
			if outcome, ok := outcomes[row.MailingItem.ID+"|"+lang.Code]; ok {
				status := "failed"
				if outcome.Success {
					status = "succeeded"
				}
				values[4] = status
				values[5] = outcome.TemplateID
				values[6] = outcome.Message
			}

			for i, value := range values {
				cell, err := excelize.CoordinatesToCellName(i+1, rowIdx)
				if err != nil {
					return nil, fmt.Errorf("failed to compute cell: %w", err)
				}
				if err := f.SetCellValue(reportSheet, cell, value); err != nil {
					return nil, fmt.Errorf("failed to write cell: %w", err)
				}
			}
			rowIdx++
		}
	}

	return f, nil
}
