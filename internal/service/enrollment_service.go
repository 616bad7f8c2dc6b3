package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/uni-enroll-api/internal/models"
	"github.com/noah-isme/uni-enroll-api/internal/repository"
	appErrors "github.com/noah-isme/uni-enroll-api/pkg/errors"
)

type enrollmentRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Enrollment, error)
	FindByCourseAndStudent(ctx context.Context, courseID int64, studentID string) (*models.Enrollment, error)
	CountByCourseAndStatuses(ctx context.Context, courseID int64, statuses []models.EnrollmentStatus, excludeID int64) (int, error)
	ListByStudentAndStatuses(ctx context.Context, studentID string, statuses []models.EnrollmentStatus) ([]models.StudentSchedule, error)
	Insert(ctx context.Context, enrollment *models.Enrollment) error
	UpdateStatus(ctx context.Context, id int64, status models.EnrollmentStatus) error
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
}

type courseReader interface {
	FindByID(ctx context.Context, id int64) (*models.Course, error)
}

// EnrollmentService implements the admission checks for student enrollment
// requests and the coordinator review workflow.
//
// Two counting rules coexist on purpose: admission counts CONFIRMED and
// PENDING rows against capacity, while the confirmation-time recheck counts
// CONFIRMED only. A pair that ever enrolled (even CANCELLED) cannot
// re-request; both behaviours match the system being replaced and are noted
// for product review.
type EnrollmentService struct {
	repo    enrollmentRepository
	courses courseReader
	logger  *zap.Logger
	now     func() time.Time
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, courses courseReader, logger *zap.Logger, now func() time.Time) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &EnrollmentService{repo: repo, courses: courses, logger: logger, now: now}
}

// RequestEnrollment admits or rejects a student's enrollment request. Checks
// run in a fixed order and the first failure wins; no write happens on any
// failure path. On success exactly one PENDING row is inserted.
func (s *EnrollmentService) RequestEnrollment(ctx context.Context, studentID string, courseID int64) (*models.Enrollment, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrCourseUnavailable
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if !course.Active {
		return nil, appErrors.ErrCourseUnavailable
	}

	if studentID == "" {
		return nil, appErrors.ErrUnauthorized
	}

	if _, err := s.repo.FindByCourseAndStudent(ctx, courseID, studentID); err == nil {
		return nil, appErrors.ErrAlreadyEnrolled
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing enrollment")
	}

	occupied, err := s.repo.CountByCourseAndStatuses(ctx, courseID, models.SeatHoldingStatuses, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
	}
	if occupied >= course.Capacity {
		return nil, appErrors.ErrCapacityExceeded
	}

	schedule, err := s.repo.ListByStudentAndStatuses(ctx, studentID, models.SeatHoldingStatuses)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student schedule")
	}
	for _, existing := range schedule {
		if models.Overlaps(course.StartTime, course.EndTime, existing.CourseStart, existing.CourseEnd) {
			return nil, appErrors.Clone(appErrors.ErrScheduleConflict,
				fmt.Sprintf("course overlaps %s (%s) %s-%s",
					existing.CourseCode, existing.CourseName, existing.CourseStart, existing.CourseEnd))
		}
	}

	enrollment := &models.Enrollment{
		CourseID:    courseID,
		StudentID:   studentID,
		RequestedAt: s.now().UTC(),
		Status:      models.EnrollmentStatusPending,
	}
	if err := s.repo.Insert(ctx, enrollment); err != nil {
		// Two concurrent requests for the pair race to the unique index; the
		// loser is reported the same as a sequential duplicate.
		if errors.Is(err, repository.ErrDuplicatePair) {
			return nil, appErrors.ErrAlreadyEnrolled
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}

	s.logger.Info("enrollment requested",
		zap.Int64("enrollment_id", enrollment.ID),
		zap.Int64("course_id", courseID),
		zap.String("student_id", studentID))
	return enrollment, nil
}

// SetEnrollmentStatus transitions an enrollment. Confirming a non-confirmed
// enrollment recounts CONFIRMED seats excluding the row being transitioned;
// every other transition is unconditional. The catalog cache is left alone:
// status changes affect occupancy only, and cached occupancy is allowed to be
// stale for the snapshot TTL.
func (s *EnrollmentService) SetEnrollmentStatus(ctx context.Context, id int64, newStatus models.EnrollmentStatus) (*models.Enrollment, error) {
	if !models.ValidEnrollmentStatus(newStatus) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown enrollment status")
	}

	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	if newStatus == models.EnrollmentStatusConfirmed && enrollment.Status != models.EnrollmentStatusConfirmed {
		course, err := s.courses.FindByID(ctx, enrollment.CourseID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
		}
		confirmed, err := s.repo.CountByCourseAndStatuses(ctx, enrollment.CourseID,
			[]models.EnrollmentStatus{models.EnrollmentStatusConfirmed}, enrollment.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count confirmed enrollments")
		}
		if confirmed >= course.Capacity {
			return nil, appErrors.Clone(appErrors.ErrCapacityExceeded, "cannot confirm: course capacity has been reached")
		}
	}

	if err := s.repo.UpdateStatus(ctx, id, newStatus); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment status")
	}

	enrollment.Status = newStatus
	s.logger.Info("enrollment status changed",
		zap.Int64("enrollment_id", id),
		zap.String("status", string(newStatus)))
	return enrollment, nil
}

// List returns enrollment details with pagination metadata.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error) {
	details, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return details, pagination, nil
}
