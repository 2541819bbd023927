package services

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"map-action-api/models"
)

// BuildReportWorkbook renders a stored analysis report as an Excel
// workbook: one sheet per index series plus the land-cover histogram.
func BuildReportWorkbook(report *models.AnalysisReport) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", "NDVI")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"1B4F72"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if err := writeSeriesSheet(f, "NDVI", report.NDVI, headerStyle); err != nil {
		return nil, err
	}
	if err := writeSeriesSheet(f, "NDWI", report.NDWI, headerStyle); err != nil {
		return nil, err
	}
	if err := writeLandCoverSheet(f, report.LandCover, headerStyle); err != nil {
		return nil, err
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeSeriesSheet(f *excelize.File, name string, series models.IndexTimeSeries, headerStyle int) error {
	if name != "NDVI" {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	f.SetCellValue(name, "A1", "Date")
	f.SetCellValue(name, "B1", name)
	f.SetCellStyle(name, "A1", "B1", headerStyle)
	f.SetColWidth(name, "A", "B", 16)

	for i, point := range series {
		row := i + 2
		f.SetCellValue(name, fmt.Sprintf("A%d", row), point.Date.Format("2006-01-02"))
		f.SetCellValue(name, fmt.Sprintf("B%d", row), point.Value)
	}
	return nil
}

func writeLandCoverSheet(f *excelize.File, landcover models.LandCoverHistogram, headerStyle int) error {
	const sheet = "Couverture terrestre"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	f.SetCellValue(sheet, "A1", "Classe")
	f.SetCellValue(sheet, "B1", "Pixels")
	f.SetCellValue(sheet, "C1", "Proportion")
	f.SetCellStyle(sheet, "A1", "C1", headerStyle)
	f.SetColWidth(sheet, "A", "A", 28)
	f.SetColWidth(sheet, "B", "C", 14)

	names := make([]string, 0, len(landcover))
	for name := range landcover {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if landcover[names[i]] != landcover[names[j]] {
			return landcover[names[i]] > landcover[names[j]]
		}
		return names[i] < names[j]
	})

	total := landcover.Total()
	for i, name := range names {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), name)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), landcover[name])
		if total > 0 {
			f.SetCellValue(sheet, fmt.Sprintf("C%d", row),
				fmt.Sprintf("%.1f%%", float64(landcover[name])/float64(total)*100))
		}
	}
	return nil
}
