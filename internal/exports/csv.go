package exports

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"attendex/event-portal-backend/internal/events"
)

// AttendanceCSV streams the attendee list as CSV. Suited for large events
// where building a workbook in memory is wasteful.
func AttendanceCSV(w io.Writer, attendees []events.Attendee) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(attendanceColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, a := range attendees {
		record := []string{
			a.Name,
			a.Email,
			a.Organization,
			strconv.FormatBool(a.CheckedIn),
			formatTimePtr(a.CheckedInAt),
			a.RegisteredAt.Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
