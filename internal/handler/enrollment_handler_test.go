package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-enroll-api/internal/middleware"
	"github.com/noah-isme/uni-enroll-api/internal/models"
	appErrors "github.com/noah-isme/uni-enroll-api/pkg/errors"
)

type enrollmentServiceMock struct {
	requestedStudent string
	requestedCourse  int64
	requestErr       error
	statusErr        error
}

func (m *enrollmentServiceMock) RequestEnrollment(ctx context.Context, studentID string, courseID int64) (*models.Enrollment, error) {
	m.requestedStudent = studentID
	m.requestedCourse = courseID
	if m.requestErr != nil {
		return nil, m.requestErr
	}
	return &models.Enrollment{ID: 101, CourseID: courseID, StudentID: studentID, Status: models.EnrollmentStatusPending}, nil
}

func (m *enrollmentServiceMock) SetEnrollmentStatus(ctx context.Context, id int64, status models.EnrollmentStatus) (*models.Enrollment, error) {
	if m.statusErr != nil {
		return nil, m.statusErr
	}
	return &models.Enrollment{ID: id, Status: status}, nil
}

func (m *enrollmentServiceMock) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error) {
	return []models.EnrollmentDetail{}, &models.Pagination{Page: 1, PageSize: 20}, nil
}

func buildEnrollmentRouter(svc *enrollmentServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if userID := c.GetHeader("X-Test-User"); userID != "" {
			c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: userID, Role: models.RoleStudent})
		}
		c.Next()
	})

	h := NewEnrollmentHandler(svc)
	router.POST("/enrollments", h.Create)
	router.PUT("/enrollments/:id/status", h.SetStatus)
	router.GET("/enrollments", h.List)
	return router
}

func TestEnrollmentHandlerCreate(t *testing.T) {
	svc := &enrollmentServiceMock{}
	router := buildEnrollmentRouter(svc)

	req, _ := http.NewRequest(http.MethodPost, "/enrollments", bytes.NewBufferString(`{"course_id":1}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", "student-1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, "student-1", svc.requestedStudent)
	assert.Equal(t, int64(1), svc.requestedCourse)
	assert.Contains(t, resp.Body.String(), `"status":"PENDING"`)
}

func TestEnrollmentHandlerCreateAnonymousPassesEmptyCaller(t *testing.T) {
	svc := &enrollmentServiceMock{requestErr: appErrors.ErrUnauthorized}
	router := buildEnrollmentRouter(svc)

	req, _ := http.NewRequest(http.MethodPost, "/enrollments", bytes.NewBufferString(`{"course_id":1}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Empty(t, svc.requestedStudent, "identity checks belong to the service, not the route")
}

func TestEnrollmentHandlerCreateInvalidPayload(t *testing.T) {
	router := buildEnrollmentRouter(&enrollmentServiceMock{})

	req, _ := http.NewRequest(http.MethodPost, "/enrollments", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestEnrollmentHandlerCreateConflict(t *testing.T) {
	svc := &enrollmentServiceMock{requestErr: appErrors.ErrAlreadyEnrolled}
	router := buildEnrollmentRouter(svc)

	req, _ := http.NewRequest(http.MethodPost, "/enrollments", bytes.NewBufferString(`{"course_id":1}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", "student-1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusConflict, resp.Code)
	assert.Contains(t, resp.Body.String(), "ALREADY_ENROLLED")
}

func TestEnrollmentHandlerSetStatus(t *testing.T) {
	router := buildEnrollmentRouter(&enrollmentServiceMock{})

	req, _ := http.NewRequest(http.MethodPut, "/enrollments/5/status", bytes.NewBufferString(`{"status":"confirmed"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"status":"CONFIRMED"`)
}

func TestEnrollmentHandlerSetStatusBadID(t *testing.T) {
	router := buildEnrollmentRouter(&enrollmentServiceMock{})

	req, _ := http.NewRequest(http.MethodPut, "/enrollments/abc/status", bytes.NewBufferString(`{"status":"CONFIRMED"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestEnrollmentHandlerList(t *testing.T) {
	router := buildEnrollmentRouter(&enrollmentServiceMock{})

	req, _ := http.NewRequest(http.MethodGet, "/enrollments?courseId=1&status=pending", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"pagination"`)
}
