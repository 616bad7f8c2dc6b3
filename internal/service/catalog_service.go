package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/uni-enroll-api/internal/models"
	appErrors "github.com/noah-isme/uni-enroll-api/pkg/errors"
)

// CatalogCacheKey is the single fixed key the active-course snapshot lives at.
const CatalogCacheKey = "catalog:active_courses"

type catalogCourseRepository interface {
	ListActive(ctx context.Context, filter models.CourseFilter) ([]models.CourseWithEnrollments, error)
	FindWithEnrollments(ctx context.Context, id int64) (*models.CourseWithEnrollments, error)
}

type catalogEnrollmentReader interface {
	FindByCourseAndStudent(ctx context.Context, courseID int64, studentID string) (*models.Enrollment, error)
}

// CatalogCourse is the catalog projection of a course with derived seats.
type CatalogCourse struct {
	models.CourseWithEnrollments
	AvailableSeats int `json:"available_seats"`
}

// CourseDetail is the single-course view with the caller's enrollment state.
type CourseDetail struct {
	CatalogCourse
	AlreadyEnrolled bool `json:"already_enrolled"`
}

// CatalogService serves the course catalog through a read-through cache.
// Snapshots embed enrollment rows, so occupancy shown from cache can lag the
// store by up to the cache TTL. That staleness is an accepted trade-off.
type CatalogService struct {
	courses     catalogCourseRepository
	enrollments catalogEnrollmentReader
	cache       *CacheService
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// NewCatalogService constructs CatalogService.
func NewCatalogService(courses catalogCourseRepository, enrollments catalogEnrollmentReader, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *CatalogService {
	if cacheTTL <= 0 {
		cacheTTL = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{courses: courses, enrollments: enrollments, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// GetActiveCourses returns active courses ordered by name. The unfiltered
// listing is served read-through from the cache; filtered queries always go
// to the store because the snapshot only covers the full catalog.
func (s *CatalogService) GetActiveCourses(ctx context.Context, filter models.CourseFilter) ([]CatalogCourse, error) {
	if filter.IsZero() {
		var cached []models.CourseWithEnrollments
		if s.cache.Get(ctx, CatalogCacheKey, &cached) {
			return decorate(cached), nil
		}
	}

	courses, err := s.courses.ListActive(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list active courses")
	}

	if filter.IsZero() {
		s.cache.Set(ctx, CatalogCacheKey, courses, s.cacheTTL)
	}
	return decorate(courses), nil
}

// GetCourse returns a course (active or not) with derived seats and, when a
// caller identity is supplied, whether that student already holds an
// enrollment row for it.
func (s *CatalogService) GetCourse(ctx context.Context, id int64, studentID string) (*CourseDetail, error) {
	course, err := s.courses.FindWithEnrollments(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	detail := &CourseDetail{CatalogCourse: CatalogCourse{
		CourseWithEnrollments: *course,
		AvailableSeats:        course.AvailableSeats(),
	}}

	if studentID != "" {
		if _, err := s.enrollments.FindByCourseAndStudent(ctx, id, studentID); err == nil {
			detail.AlreadyEnrolled = true
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
		}
	}
	return detail, nil
}

// InvalidateCache unconditionally drops the catalog snapshot.
func (s *CatalogService) InvalidateCache(ctx context.Context) {
	s.cache.Invalidate(ctx, CatalogCacheKey)
}

func decorate(courses []models.CourseWithEnrollments) []CatalogCourse {
	result := make([]CatalogCourse, len(courses))
	for i, c := range courses {
		result[i] = CatalogCourse{CourseWithEnrollments: c, AvailableSeats: c.AvailableSeats()}
	}
	return result
}
