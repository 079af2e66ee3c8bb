package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tiltakhub/participant-api/internal/models"
	"github.com/tiltakhub/participant-api/internal/reconcile"
	appErrors "github.com/tiltakhub/participant-api/pkg/errors"
	"github.com/tiltakhub/participant-api/pkg/export"
)

// ExportFormat selects the rendering of a roster export.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportResult is a rendered roster export.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders offering rosters as downloadable files.
type ExportService struct {
	store  participantStore
	audit  auditWriter
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(store participantStore, audit auditWriter, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		store:  store,
		audit:  audit,
		csv:    csv,
		pdf:    pdf,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ExportRoster renders the full visible roster of an offering.
func (s *ExportService) ExportRoster(ctx context.Context, offeringID uuid.UUID, format ExportFormat, claims *models.JWTClaims) (*ExportResult, error) {
	records, _, err := s.store.ListByOffering(ctx, models.ParticipantFilter{
		OfferingID: offeringID,
		Page:       1,
		PageSize:   200,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	dataset := buildRosterDataset(records)
	title := fmt.Sprintf("Participant roster %s", offeringID)

	var payload []byte
	var contentType string
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	if s.audit != nil && claims != nil {
		resourceID := offeringID.String()
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			StaffID:    &claims.StaffID,
			Action:     models.AuditActionRosterExport,
			Resource:   "offerings",
			ResourceID: &resourceID,
			NewValues:  []byte(fmt.Sprintf(`{"format":%q}`, format)),
		}); err != nil {
			s.logger.Warn("failed to record export audit log", zap.Error(err))
		}
	}

	return &ExportResult{
		Filename:    fmt.Sprintf("roster-%s-%s.%s", offeringID, s.now().Format("2006-01-02"), format),
		ContentType: contentType,
		Payload:     payload,
	}, nil
}

func buildRosterDataset(records []models.ParticipantRecord) export.Dataset {
	headers := []string{"Last name", "First name", "Status", "Start date", "End date", "Assessment"}
	rows := make([]map[string]string, 0, len(records))
	for i := range records {
		rec := &records[i]
		row := map[string]string{
			"Last name":  rec.LastName,
			"First name": strings.TrimSpace(firstAndMiddle(rec)),
			"Status":     string(rec.Status),
			"Start date": formatDate(rec.StartDate),
			"End date":   formatDate(rec.EndDate),
		}
		if current := reconcile.CurrentAssessment(rec.Assessments); current != nil {
			row["Assessment"] = string(current.Type)
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func firstAndMiddle(rec *models.ParticipantRecord) string {
	if rec.MiddleName != nil {
		return rec.FirstName + " " + *rec.MiddleName
	}
	return rec.FirstName
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
