package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/uep-attendance-analytics/internal/engine"
	"github.com/noah-isme/uep-attendance-analytics/internal/models"
	appErrors "github.com/noah-isme/uep-attendance-analytics/pkg/errors"
)

func newExportServiceForTest() *ExportService {
	analytics := newAnalyticsServiceForTest(&stubSnapshotLoader{snapshot: fixtureSnapshot()}, nil)
	svc := NewExportService(analytics, nil, zap.NewNop())
	svc.now = func() time.Time { return baseDay }
	return svc
}

func readCSV(t *testing.T, payload []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(payload)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestExportServiceEventsCSV(t *testing.T) {
	svc := newExportServiceForTest()

	file, err := svc.Events(context.Background(), models.FilterCriteria{Faculties: []string{"Engineering"}}, "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)
	assert.True(t, strings.HasPrefix(file.Filename, "events_20241007_000000_"))
	assert.True(t, strings.HasSuffix(file.Filename, ".csv"))
	assert.NotEmpty(t, file.ID)

	records := readCSV(t, file.Payload)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"ID", "Title", "Type", "Faculty", "Date", "Start", "End", "Location", "Capacity"}, records[0])
	assert.Equal(t, []string{"e-1", "Event e-1", "talk", "Engineering", "2024-10-07", "09:00", "11:00", "Auditorio A", "10"}, records[1])
	assert.Equal(t, "e-2", records[2][0])
}

func TestExportServiceAttendeesCSV(t *testing.T) {
	svc := newExportServiceForTest()

	file, err := svc.Attendees(context.Background(), "e-1", "CSV")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(file.Filename, "attendees_e-1_"))

	records := readCSV(t, file.Payload)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"u-1", "Usuario 001", "Engineering", "2024-10-07 09:05:00", "QR", "5.00", string(engine.StatusPresent)}, records[1])
	assert.Equal(t, "30.00", records[2][5])
	assert.Equal(t, string(engine.StatusLate), records[2][6])
}

func TestExportServiceAttendeesPDF(t *testing.T) {
	svc := newExportServiceForTest()

	file, err := svc.Attendees(context.Background(), "e-1", "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Payload, []byte("%PDF")))
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	svc := newExportServiceForTest()

	assert.False(t, svc.Supports("xlsx"))
	assert.True(t, svc.Supports("PDF"))
	_, err := svc.Events(context.Background(), models.FilterCriteria{}, "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportServiceUnknownEvent(t *testing.T) {
	svc := newExportServiceForTest()

	_, err := svc.Attendees(context.Background(), "e-404", "csv")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "na", sanitizeFilename(""))
	assert.Equal(t, "a-b_c", sanitizeFilename("a/b c"))
}
