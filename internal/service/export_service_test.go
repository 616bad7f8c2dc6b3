package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-enroll-api/internal/models"
	"github.com/noah-isme/uni-enroll-api/pkg/export"
	appErrors "github.com/noah-isme/uni-enroll-api/pkg/errors"
)

type stubRosterReader struct {
	roster []models.EnrollmentDetail
}

func (m *stubRosterReader) ListByCourse(ctx context.Context, courseID int64) ([]models.EnrollmentDetail, error) {
	return m.roster, nil
}

type recordingRenderer struct {
	dataset export.Dataset
	title   string
}

func (m *recordingRenderer) Render(data export.Dataset) ([]byte, error) {
	m.dataset = data
	return []byte("csv-bytes"), nil
}

func (m *recordingRenderer) RenderPDF(data export.Dataset, title string) ([]byte, error) {
	m.dataset = data
	m.title = title
	return []byte("pdf-bytes"), nil
}

type pdfAdapter struct{ r *recordingRenderer }

func (a pdfAdapter) Render(data export.Dataset, title string) ([]byte, error) {
	return a.r.RenderPDF(data, title)
}

func exportFixture() (*ExportService, *recordingRenderer) {
	courses := &stubCourseReader{courses: map[int64]models.Course{1: algoCourse(30)}}
	roster := &stubRosterReader{roster: []models.EnrollmentDetail{{
		Enrollment: models.Enrollment{
			ID: 5, CourseID: 1, StudentID: "user-2",
			RequestedAt: time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC),
			Status:      models.EnrollmentStatusConfirmed,
		},
		StudentName:  "Sam Student",
		StudentEmail: "sam@uni.test",
		CourseCode:   "CS101",
		CourseName:   "Algorithms",
	}}}
	renderer := &recordingRenderer{}
	return NewExportService(courses, roster, renderer, pdfAdapter{renderer}, nil), renderer
}

func TestExportRosterCSV(t *testing.T) {
	svc, renderer := exportFixture()

	result, err := svc.ExportRoster(context.Background(), 1, FormatCSV)

	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "roster-CS101.csv", result.Filename)
	assert.Equal(t, []byte("csv-bytes"), result.Content)
	require.Len(t, renderer.dataset.Rows, 1)
	assert.Equal(t, []string{"Sam Student", "sam@uni.test", "2025-09-01 10:00", "CONFIRMED"}, renderer.dataset.Rows[0])
}

func TestExportRosterPDF(t *testing.T) {
	svc, renderer := exportFixture()

	result, err := svc.ExportRoster(context.Background(), 1, FormatPDF)

	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.Equal(t, "roster-CS101.pdf", result.Filename)
	assert.Equal(t, "CS101 Algorithms roster", renderer.title)
}

func TestExportRosterUnknownFormat(t *testing.T) {
	svc, _ := exportFixture()

	_, err := svc.ExportRoster(context.Background(), 1, "xlsx")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportRosterCourseNotFound(t *testing.T) {
	svc, _ := exportFixture()

	_, err := svc.ExportRoster(context.Background(), 42, FormatCSV)

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
