package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/uni-enroll-api/internal/models"
	"github.com/noah-isme/uni-enroll-api/pkg/export"
	appErrors "github.com/noah-isme/uni-enroll-api/pkg/errors"
)

// Supported roster export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

type rosterReader interface {
	ListByCourse(ctx context.Context, courseID int64) ([]models.EnrollmentDetail, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// RosterExport is a rendered roster document.
type RosterExport struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders course rosters as downloadable documents.
type ExportService struct {
	courses courseReader
	roster  rosterReader
	csv     csvRenderer
	pdf     pdfRenderer
	logger  *zap.Logger
}

// NewExportService constructs ExportService.
func NewExportService(courses courseReader, roster rosterReader, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{courses: courses, roster: roster, csv: csv, pdf: pdf, logger: logger}
}

// ExportRoster renders the course roster in the requested format.
func (s *ExportService) ExportRoster(ctx context.Context, courseID int64, format string) (*RosterExport, error) {
	if format != FormatCSV && format != FormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}

	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	roster, err := s.roster.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	dataset := export.Dataset{
		Headers: []string{"Student", "Email", "Requested At", "Status"},
		Rows:    make([][]string, 0, len(roster)),
	}
	for _, entry := range roster {
		dataset.Rows = append(dataset.Rows, []string{
			entry.StudentName,
			entry.StudentEmail,
			entry.RequestedAt.UTC().Format("2006-01-02 15:04"),
			string(entry.Status),
		})
	}

	title := fmt.Sprintf("%s %s roster", course.Code, course.Name)
	switch format {
	case FormatPDF:
		content, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &RosterExport{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("roster-%s.pdf", course.Code),
		}, nil
	default:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &RosterExport{
			Content:     content,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("roster-%s.csv", course.Code),
		}, nil
	}
}
