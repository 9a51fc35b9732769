package reporter

import (
	"fmt"
	"io"

	"github.com/opscart/assist-advisor/pkg/models"
	"github.com/opscart/assist-advisor/pkg/records"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding exported records
const SheetName = "ASSIST Records"

// column widths in characters, in records.Columns order
var columnWidths = []float64{20, 25, 20, 15, 30, 15, 15, 20, 15, 15, 10, 12, 15, 20, 20, 12, 12, 12, 15, 15, 20}

// WriteRecordsExcel exports ASSIST records as an .xlsx workbook
func WriteRecordsExcel(recs []*models.AssistRecord, writer io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DCE6F1"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]interface{}, len(records.Columns))
	for i, c := range records.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(records.Columns))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, r := range recs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, excelRow(r)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(writer); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// excelRow keeps age and amount numeric so spreadsheets can sum them
func excelRow(r *models.AssistRecord) *[]interface{} {
	text := records.Row(*r)
	row := make([]interface{}, len(text))
	for i, v := range text {
		row[i] = v
	}

	row[17] = r.VehicleAge
	row[18] = r.AmountCollected.InexactFloat64()
	return &row
}
