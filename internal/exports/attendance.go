// Package exports produces downloadable attendance and issuance reports
// for an event, as Excel workbooks or CSV streams.
package exports

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"attendex/event-portal-backend/internal/certificates/batch"
	"attendex/event-portal-backend/internal/events"
)

var attendanceColumns = []string{"Name", "Email", "Organization", "Checked in", "Checked in at", "Registered at"}

// AttendanceXLSX writes a styled attendance sheet for one event.
func AttendanceXLSX(w io.Writer, event *events.Event, attendees []events.Attendee) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Attendance"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, col := range attendanceColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, col)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}
	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	for i, a := range attendees {
		row := i + 2
		setRow(f, sheet, row,
			a.Name,
			a.Email,
			a.Organization,
			a.CheckedIn,
			formatTimePtr(a.CheckedInAt),
			a.RegisteredAt.Format(time.RFC3339),
		)
	}

	if len(attendees) > 0 {
		lastCol, _ := excelize.CoordinatesToCellName(len(attendanceColumns), 1)
		f.AutoFilter(sheet, "A1:"+lastCol, nil)
	}
	f.SetColWidth(sheet, "A", "F", 24)

	// Summary sheet with event metadata
	summary := "Event"
	if _, err := f.NewSheet(summary); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	f.SetCellValue(summary, "A1", "Title")
	f.SetCellValue(summary, "B1", event.Title)
	f.SetCellValue(summary, "A2", "Location")
	f.SetCellValue(summary, "B2", event.Location)
	f.SetCellValue(summary, "A3", "Starts")
	f.SetCellValue(summary, "B3", event.StartsAt.Format(time.RFC3339))
	f.SetCellValue(summary, "A4", "Attendees")
	f.SetCellValue(summary, "B4", len(attendees))
	f.SetColWidth(summary, "A", "B", 28)

	return f.Write(w)
}

var outcomeColumns = []string{"Index", "Recipient", "Status", "Generated", "Failure", "Location", "Error"}

// OutcomesXLSX writes the per-recipient results of a certificate batch.
func OutcomesXLSX(w io.Writer, outcomes []batch.Outcome) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Certificates"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, col := range outcomeColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, col)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for i, o := range outcomes {
		row := i + 2
		setRow(f, sheet, row,
			o.Index,
			o.RecipientKey,
			string(o.Status),
			o.Generated,
			string(o.FailureKind),
			o.Location,
			o.Error,
		)
	}
	f.SetColWidth(sheet, "A", "G", 24)

	return f.Write(w)
}

func setRow(f *excelize.File, sheet string, row int, values ...interface{}) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		f.SetCellValue(sheet, cell, v)
	}
}

func formatTimePtr(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
