package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

var materialPlanHeaders = []string{
	"Mã NVL", "Tên NVL", "ĐVT", "SL yêu cầu", "Tồn kho", "SL cần mua",
}

var semiPlanHeaders = []string{
	"Mã BTP", "Tên BTP", "ĐVT", "SL yêu cầu", "Quy cách mẻ", "Số mẻ",
}

// ExportMaterialRequirementPlan renders the requirement plan of [from, to] as
// an xlsx workbook with one sheet for raw materials and one for semi-products.
func (s *PlanningService) ExportMaterialRequirementPlan(ctx context.Context, from, to time.Time, deductStock bool) (*excelize.File, string, error) {
	plan, err := s.MaterialRequirementPlan(ctx, from, to, deductStock)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	materialSheet := "NVL"
	f.SetSheetName("Sheet1", materialSheet)

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, h := range materialPlanHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(materialSheet, cell, h)
		f.SetCellStyle(materialSheet, cell, cell, boldStyle)
	}
	for rowIdx, line := range plan.Materials {
		row := rowIdx + 2
		f.SetCellValue(materialSheet, fmt.Sprintf("A%d", row), line.MaterialCode)
		f.SetCellValue(materialSheet, fmt.Sprintf("B%d", row), line.MaterialName)
		f.SetCellValue(materialSheet, fmt.Sprintf("C%d", row), line.UOM)
		f.SetCellValue(materialSheet, fmt.Sprintf("D%d", row), line.GrossQty.InexactFloat64())
		f.SetCellValue(materialSheet, fmt.Sprintf("E%d", row), line.OnHand.InexactFloat64())
		f.SetCellValue(materialSheet, fmt.Sprintf("F%d", row), line.NetQty.InexactFloat64())
	}

	semiSheet := "BTP"
	f.NewSheet(semiSheet)
	for i, h := range semiPlanHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(semiSheet, cell, h)
		f.SetCellStyle(semiSheet, cell, cell, boldStyle)
	}
	for rowIdx, line := range plan.SemiProducts {
		row := rowIdx + 2
		f.SetCellValue(semiSheet, fmt.Sprintf("A%d", row), line.ProductCode)
		f.SetCellValue(semiSheet, fmt.Sprintf("B%d", row), line.ProductName)
		f.SetCellValue(semiSheet, fmt.Sprintf("C%d", row), line.UOM)
		f.SetCellValue(semiSheet, fmt.Sprintf("D%d", row), line.Quantity.InexactFloat64())
		if line.BatchSize != nil {
			f.SetCellValue(semiSheet, fmt.Sprintf("E%d", row), line.BatchSize.InexactFloat64())
		}
		f.SetCellValue(semiSheet, fmt.Sprintf("F%d", row), line.BatchCount.InexactFloat64())
	}

	filename := fmt.Sprintf("ke-hoach-nvl_%s_%s.xlsx", plan.From.Format("20060102"), plan.To.Format("20060102"))
	return f, filename, nil
}
