package exports

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"attendex/event-portal-backend/internal/certificates/batch"
	"attendex/event-portal-backend/internal/events"
)

func sampleData() (*events.Event, []events.Attendee) {
	at := time.Date(2026, 9, 12, 10, 30, 0, 0, time.UTC)
	event := &events.Event{
		ID:       uuid.New(),
		Title:    "Go Workshop",
		Location: "Lisbon",
		StartsAt: time.Date(2026, 9, 12, 9, 0, 0, 0, time.UTC),
	}
	attendees := []events.Attendee{
		{Name: "Ana", Email: "ana@example.com", Organization: "Acme", CheckedIn: true, CheckedInAt: &at, RegisteredAt: at.Add(-time.Hour)},
		{Name: "Bo", Email: "bo@example.com", RegisteredAt: at.Add(-2 * time.Hour)},
	}
	return event, attendees
}

func TestAttendanceXLSX(t *testing.T) {
	event, attendees := sampleData()

	var buf bytes.Buffer
	require.NoError(t, AttendanceXLSX(&buf, event, attendees))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Attendance")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Name", rows[0][0])
	assert.Equal(t, "Ana", rows[1][0])
	assert.Equal(t, "TRUE", rows[1][3])
	assert.Equal(t, "Bo", rows[2][0])

	title, err := f.GetCellValue("Event", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Go Workshop", title)
}

func TestAttendanceCSV(t *testing.T) {
	_, attendees := sampleData()

	var buf bytes.Buffer
	require.NoError(t, AttendanceCSV(&buf, attendees))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, attendanceColumns, records[0])
	assert.Equal(t, "ana@example.com", records[1][1])
	assert.Equal(t, "false", records[2][3])
	assert.Equal(t, "", records[2][4], "never checked in")
}

func TestOutcomesXLSX(t *testing.T) {
	outcomes := []batch.Outcome{
		{Index: 0, RecipientKey: "u-1", Status: batch.StatusSuccess, Generated: true, Location: "https://store.local/u-1.png"},
		{Index: 1, RecipientKey: "u-2", Status: batch.StatusFailed, FailureKind: batch.FailRaster, Error: "boom"},
	}

	var buf bytes.Buffer
	require.NoError(t, OutcomesXLSX(&buf, outcomes))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Certificates")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "success", rows[1][2])
	assert.Equal(t, "raster", rows[2][4])
}
