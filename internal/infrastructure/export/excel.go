// Package export renders a finished plan into an Excel communications
// calendar.
package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"ContentPlanner/internal/domain"
	"ContentPlanner/internal/ports"
)

const sheetName = "Communications calendar"

// ExcelRenderer writes the flattened schedule as a styled workbook.
type ExcelRenderer struct{}

var _ ports.PlanExporter = (*ExcelRenderer)(nil)

// NewExcelRenderer builds a stateless renderer.
func NewExcelRenderer() *ExcelRenderer {
	return &ExcelRenderer{}
}

// Render writes the plan to outputPath. Only filled slots become rows; the
// header block carries the covered period and the footer the totals.
func (r *ExcelRenderer) Render(plan domain.Plan, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(sheet)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"5B9BD5"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	end := plan.Start.AddDate(0, 0, plan.Weeks*domain.DaysPerWeek-1)

	if err := f.MergeCell(sheetName, "A1", "G1"); err != nil {
		return fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheetName, "A1", "COMMUNICATIONS CALENDAR")
	f.SetCellStyle(sheetName, "A1", "G1", titleStyle)

	if err := f.MergeCell(sheetName, "A2", "G2"); err != nil {
		return fmt.Errorf("merge subtitle: %w", err)
	}
	f.SetCellValue(sheetName, "A2", fmt.Sprintf("Period: %s - %s",
		plan.Start.Format("02.01.2006"), end.Format("02.01.2006")))

	headers := []string{"#", "Date", "Weekday", "Time", "Title", "Link", "Media"}
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, headerRow)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	rowNum := headerRow
	index := 0
	for _, entry := range plan.Entries {
		if entry.Empty() {
			continue
		}
		rowNum++
		index++
		values := []any{
			index,
			entry.Date.Format("02.01.2006"),
			entry.Date.Weekday().String(),
			entry.Time,
			entry.Title,
			entry.Link,
			mediaSummary(entry),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
			if err != nil {
				return fmt.Errorf("data cell: %w", err)
			}
			f.SetCellValue(sheetName, cell, value)
		}
	}

	footer := rowNum + 2
	if err := f.MergeCell(sheetName,
		fmt.Sprintf("A%d", footer), fmt.Sprintf("G%d", footer)); err != nil {
		return fmt.Errorf("merge footer: %w", err)
	}
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", footer),
		fmt.Sprintf("Scheduled publications: %d", index))
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", footer+1),
		fmt.Sprintf("Generated: %s", time.Now().Format("02.01.2006 15:04")))

	widths := map[string]float64{"A": 5, "B": 12, "C": 14, "D": 8, "E": 40, "F": 30, "G": 12}
	for col, width := range widths {
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return fmt.Errorf("column width: %w", err)
		}
	}

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// headerRow is where the column headers sit; rows 1-3 hold the title block.
const headerRow = 4

func mediaSummary(entry domain.ScheduleEntry) string {
	switch {
	case entry.Photos > 0 && entry.Videos > 0:
		return fmt.Sprintf("photo (%d), video (%d)", entry.Photos, entry.Videos)
	case entry.Photos > 0:
		return fmt.Sprintf("photo (%d)", entry.Photos)
	case entry.Videos > 0:
		return fmt.Sprintf("video (%d)", entry.Videos)
	default:
		return "—"
	}
}
