package httpapi

import (
	"fmt"

	"lead-service/internal/domain"

	"github.com/xuri/excelize/v2"
)

// LeadsExportHeader export column order for the seller leads report.
var LeadsExportHeader = []string{
	"Lead ID",
	"Lead Status",
	"Requirement",
	"Requirement Status",
	"Quantity",
	"Location",
	"Buyer Name",
	"Buyer Email",
	"Contacted At",
}

// GenerateLeadsExport renders the seller's contacted leads as an xlsx file.
func GenerateLeadsExport(items []*domain.ContactedRequirement) ([]byte, error) {
	f := excelize.NewFile()

	sheetName := "Leads"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, title := range LeadsExportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, title); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}
	endCell, _ := excelize.CoordinatesToCellName(len(LeadsExportHeader), 1)
	_ = f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for i, item := range items {
		row := []any{
			item.LeadID,
			item.LeadStatus,
			item.ProductName,
			item.RequirementStatus,
			item.Quantity,
			item.LocationPreference,
			item.BuyerName,
			item.BuyerEmail,
			item.LeadCreatedAt.Format("2006-01-02 15:04:05"),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	_ = f.Close()

	return buf.Bytes(), nil
}
