package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/uep-attendance-analytics/internal/engine"
	"github.com/noah-isme/uep-attendance-analytics/internal/models"
	appErrors "github.com/noah-isme/uep-attendance-analytics/pkg/errors"
	"github.com/noah-isme/uep-attendance-analytics/pkg/export"
)

type exportSource interface {
	FilteredEvents(ctx context.Context, criteria models.FilterCriteria) ([]models.Event, models.FilterCriteria, error)
	AttendeeDetail(ctx context.Context, eventID string) (models.Event, []engine.AttendeeDetail, error)
}

// ExportFile is a rendered document ready for download.
type ExportFile struct {
	ID          string
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders filtered events and attendee lists as CSV or PDF.
type ExportService struct {
	source    exportSource
	renderers map[string]export.Renderer
	loc       *time.Location
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService. Renderers are keyed by their
// extension; CSV and PDF are registered when none are given.
func NewExportService(source exportSource, loc *time.Location, logger *zap.Logger, renderers ...export.Renderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	if len(renderers) == 0 {
		renderers = []export.Renderer{export.NewCSVExporter(), export.NewPDFExporter()}
	}
	byExt := make(map[string]export.Renderer, len(renderers))
	for _, r := range renderers {
		byExt[r.Extension()] = r
	}
	return &ExportService{source: source, renderers: byExt, loc: loc, logger: logger, now: time.Now}
}

// Supports reports whether a renderer is registered for the format.
func (s *ExportService) Supports(format string) bool {
	_, ok := s.renderers[strings.ToLower(format)]
	return ok
}

// Events renders the events selected by the criteria.
func (s *ExportService) Events(ctx context.Context, criteria models.FilterCriteria, format string) (*ExportFile, error) {
	renderer, err := s.renderer(format)
	if err != nil {
		return nil, err
	}
	events, _, err := s.source.FilteredEvents(ctx, criteria)
	if err != nil {
		return nil, err
	}
	return s.render(renderer, "events", s.eventsDataset(events))
}

// Attendees renders the attendee detail of one event.
func (s *ExportService) Attendees(ctx context.Context, eventID, format string) (*ExportFile, error) {
	renderer, err := s.renderer(format)
	if err != nil {
		return nil, err
	}
	event, rows, err := s.source.AttendeeDetail(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.render(renderer, "attendees_"+sanitizeFilename(event.ID), s.attendeesDataset(event, rows))
}

func (s *ExportService) renderer(format string) (export.Renderer, error) {
	renderer, ok := s.renderers[strings.ToLower(format)]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	return renderer, nil
}

func (s *ExportService) render(renderer export.Renderer, prefix string, dataset export.Dataset) (*ExportFile, error) {
	payload, err := renderer.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	id := uuid.NewString()
	filename := fmt.Sprintf("%s_%s_%s.%s", prefix, s.now().In(s.loc).Format("20060102_150405"), id[:8], renderer.Extension())
	s.logger.Info("export rendered",
		zap.String("export_id", id),
		zap.String("filename", filename),
		zap.Int("rows", len(dataset.Rows)),
		zap.Int("bytes", len(payload)),
	)
	return &ExportFile{ID: id, Filename: filename, ContentType: renderer.ContentType(), Payload: payload}, nil
}

func (s *ExportService) eventsDataset(events []models.Event) export.Dataset {
	headers := []string{"ID", "Title", "Type", "Faculty", "Date", "Start", "End", "Location", "Capacity"}
	rows := make([]map[string]string, 0, len(events))
	for _, ev := range events {
		rows = append(rows, map[string]string{
			"ID":       ev.ID,
			"Title":    ev.Title,
			"Type":     string(ev.Type),
			"Faculty":  ev.FacultyName(),
			"Date":     ev.StartAt.In(s.loc).Format("2006-01-02"),
			"Start":    ev.StartAt.In(s.loc).Format("15:04"),
			"End":      ev.EndAt.In(s.loc).Format("15:04"),
			"Location": ev.Location,
			"Capacity": strconv.Itoa(ev.Capacity),
		})
	}
	return export.Dataset{Title: "Filtered Events", Headers: headers, Rows: rows}
}

func (s *ExportService) attendeesDataset(event models.Event, detail []engine.AttendeeDetail) export.Dataset {
	headers := []string{"User ID", "Name", "Faculty", "Checked In At", "Method", "Latency (min)", "Status"}
	rows := make([]map[string]string, 0, len(detail))
	for _, d := range detail {
		rows = append(rows, map[string]string{
			"User ID":       d.UserID,
			"Name":          d.Name,
			"Faculty":       d.Faculty,
			"Checked In At": d.CheckedInAt.In(s.loc).Format("2006-01-02 15:04:05"),
			"Method":        string(d.Method),
			"Latency (min)": strconv.FormatFloat(d.LatencyMinutes, 'f', 2, 64),
			"Status":        string(d.Status),
		})
	}
	title := "Attendees"
	if event.Title != "" {
		title = "Attendees - " + event.Title
	}
	return export.Dataset{Title: title, Headers: headers, Rows: rows}
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
