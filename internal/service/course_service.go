package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-enroll-api/internal/models"
	"github.com/noah-isme/uni-enroll-api/internal/repository"
	appErrors "github.com/noah-isme/uni-enroll-api/pkg/errors"
)

type courseRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Course, error)
	ExistsCode(ctx context.Context, code string, excludeID int64) (bool, error)
	ListAll(ctx context.Context) ([]models.CourseWithEnrollments, error)
	Insert(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Summary(ctx context.Context) (*models.CoordinatorSummary, error)
}

type cacheInvalidator interface {
	InvalidateCache(ctx context.Context)
}

// CourseSpec describes the mutable course attributes for create and edit.
type CourseSpec struct {
	Code      string           `json:"code" validate:"required,max=10"`
	Name      string           `json:"name" validate:"required,max=200"`
	Credits   int              `json:"credits" validate:"required,min=1,max=20"`
	Capacity  int              `json:"capacity" validate:"required,min=1,max=100"`
	StartTime models.TimeOfDay `json:"start_time"`
	EndTime   models.TimeOfDay `json:"end_time"`
	Active    bool             `json:"active"`
}

// EditCourseRequest carries a CourseSpec plus the expected version for
// optimistic concurrency.
type EditCourseRequest struct {
	CourseSpec
	Version int `json:"version" validate:"required,min=1"`
}

// CourseService manages coordinator course administration. Every successful
// mutation invalidates the catalog cache synchronously before returning.
type CourseService struct {
	repo      courseRepository
	catalog   cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs CourseService.
func NewCourseService(repo courseRepository, catalog cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, catalog: catalog, validator: validate, logger: logger}
}

func (s *CourseService) validateSpec(spec CourseSpec) error {
	if err := s.validator.Struct(spec); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if spec.StartTime >= spec.EndTime {
		return appErrors.Clone(appErrors.ErrValidation, "course start time must be before end time")
	}
	return nil
}

// ListAll returns every course for the coordinator overview.
func (s *CourseService) ListAll(ctx context.Context) ([]models.CourseWithEnrollments, error) {
	courses, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

// Summary aggregates coordinator dashboard counts.
func (s *CourseService) Summary(ctx context.Context) (*models.CoordinatorSummary, error) {
	summary, err := s.repo.Summary(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build summary")
	}
	return summary, nil
}

// Create validates and persists a new course, then invalidates the catalog.
func (s *CourseService) Create(ctx context.Context, spec CourseSpec) (*models.Course, error) {
	if err := s.validateSpec(spec); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsCode(ctx, spec.Code, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course code")
	}
	if exists {
		return nil, appErrors.ErrDuplicateCode
	}

	course := &models.Course{
		Code:      spec.Code,
		Name:      spec.Name,
		Credits:   spec.Credits,
		Capacity:  spec.Capacity,
		StartTime: spec.StartTime,
		EndTime:   spec.EndTime,
		Active:    spec.Active,
	}
	if err := s.repo.Insert(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}

	s.catalog.InvalidateCache(ctx)
	s.logger.Info("course created", zap.Int64("course_id", course.ID), zap.String("code", course.Code))
	return course, nil
}

// Edit validates and applies changes to an existing course, then invalidates
// the catalog. A version mismatch fails without mutation.
func (s *CourseService) Edit(ctx context.Context, id int64, req EditCourseRequest) (*models.Course, error) {
	if err := s.validateSpec(req.CourseSpec); err != nil {
		return nil, err
	}
	if req.Version < 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "missing course version")
	}

	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	exists, err := s.repo.ExistsCode(ctx, req.Code, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateCode, "another course already uses this code")
	}

	course.Code = req.Code
	course.Name = req.Name
	course.Credits = req.Credits
	course.Capacity = req.Capacity
	course.StartTime = req.StartTime
	course.EndTime = req.EndTime
	course.Active = req.Active
	course.Version = req.Version

	if err := s.repo.Update(ctx, course); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, appErrors.ErrConcurrentModification
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}

	s.catalog.InvalidateCache(ctx)
	s.logger.Info("course updated", zap.Int64("course_id", course.ID), zap.String("code", course.Code))
	return course, nil
}

// ToggleActive flips the active flag, then invalidates the catalog.
func (s *CourseService) ToggleActive(ctx context.Context, id int64) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	course.Active = !course.Active
	if err := s.repo.Update(ctx, course); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, appErrors.ErrConcurrentModification
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to toggle course")
	}

	s.catalog.InvalidateCache(ctx)
	s.logger.Info("course active toggled", zap.Int64("course_id", course.ID), zap.Bool("active", course.Active))
	return course, nil
}
