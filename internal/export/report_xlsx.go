package export

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/parser"
)

const reportSheet = "Report"

var reportHeader = []string{
	"Date", "Username", "Full name", "Login", "Logout", "Current activity",
	"Work", "Break", "Lunch", "Bathroom", "Meeting",
}

// ReportXLSX writes sessions as a spreadsheet, one row per session.
// Times are local HH:MM, totals HH:MM:SS.
func ReportXLSX(w io.Writer, title string, views []models.SessionView) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(reportSheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	lastCol := colName(len(reportHeader) - 1)
	f.SetColWidth(reportSheet, "A", "A", 12)
	f.SetColWidth(reportSheet, "B", "C", 20)
	f.SetColWidth(reportSheet, "D", "F", 14)
	f.SetColWidth(reportSheet, "G", lastCol, 11)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	// Title row
	f.SetCellValue(reportSheet, "A1", title)
	f.MergeCell(reportSheet, "A1", lastCol+"1")
	f.SetCellStyle(reportSheet, "A1", "A1", headerStyle)

	// Header
	for i, h := range reportHeader {
		f.SetCellValue(reportSheet, cell(colName(i), 2), h)
	}
	f.SetCellStyle(reportSheet, "A2", lastCol+"2", headerStyle)

	// Data rows
	for i, v := range views {
		row := []interface{}{
			v.Date,
			v.Username,
			v.FullName,
			parser.FormatClock(&v.LoginTime),
			parser.FormatClock(v.LogoutTime),
			activityCell(v),
			parser.FormatSeconds(v.TotalWorkTime),
			parser.FormatSeconds(v.TotalBreakTime),
			parser.FormatSeconds(v.TotalLunchTime),
			parser.FormatSeconds(v.TotalBathroomTime),
			parser.FormatSeconds(v.TotalMeetingTime),
		}
		if err := f.SetSheetRow(reportSheet, cell("A", i+3), &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// ReportXLSXFile writes the report to path
func ReportXLSXFile(path, title string, views []models.SessionView) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := ReportXLSX(out, title, views); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// ReportTitle names a report after its date bounds
func ReportTitle(from, to string, generated time.Time) string {
	span := "all dates"
	switch {
	case from != "" && to != "":
		span = from + " to " + to
	case from != "":
		span = "from " + from
	case to != "":
		span = "until " + to
	}
	return fmt.Sprintf("Attendance report (%s), generated %s", span, generated.Format("2006-01-02 15:04"))
}

func activityCell(v models.SessionView) string {
	if v.LogoutTime != nil {
		return "Closed"
	}
	return v.CurrentActivity.Label()
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
