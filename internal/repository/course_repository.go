package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-enroll-api/internal/models"
)

// ErrVersionConflict signals a stale optimistic-concurrency version on update.
var ErrVersionConflict = errors.New("stale course version")

const courseColumns = "id, code, name, credits, capacity, start_time, end_time, active, version, created_at, updated_at"

// CourseRepository handles persistence of courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID returns a course by its ID.
func (r *CourseRepository) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses WHERE id = $1", courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// FindByCode returns a course by its unique code.
func (r *CourseRepository) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses WHERE code = $1", courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, code); err != nil {
		return nil, err
	}
	return &course, nil
}

// FindWithEnrollments returns a course with its enrollment rows attached.
func (r *CourseRepository) FindWithEnrollments(ctx context.Context, id int64) (*models.CourseWithEnrollments, error) {
	course, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	decorated, err := r.attachEnrollments(ctx, []models.Course{*course})
	if err != nil {
		return nil, err
	}
	return &decorated[0], nil
}

// ExistsCode checks code uniqueness across all courses, optionally excluding one.
func (r *CourseRepository) ExistsCode(ctx context.Context, code string, excludeID int64) (bool, error) {
	query := "SELECT 1 FROM courses WHERE code = $1"
	args := []interface{}{code}
	if excludeID != 0 {
		query += fmt.Sprintf(" AND id <> $%d", len(args)+1)
		args = append(args, excludeID)
	}
	query += " LIMIT 1"
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check course code: %w", err)
	}
	return true, nil
}

// ListActive returns active courses ordered by name, with enrollments attached.
// Filter criteria narrow the result set; an empty filter returns the full catalog.
func (r *CourseRepository) ListActive(ctx context.Context, filter models.CourseFilter) ([]models.CourseWithEnrollments, error) {
	conditions := []string{"active = TRUE"}
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR code ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.CreditsMin != nil {
		conditions = append(conditions, fmt.Sprintf("credits >= $%d", len(args)+1))
		args = append(args, *filter.CreditsMin)
	}
	if filter.CreditsMax != nil {
		conditions = append(conditions, fmt.Sprintf("credits <= $%d", len(args)+1))
		args = append(args, *filter.CreditsMax)
	}
	if filter.StartAfter != nil {
		conditions = append(conditions, fmt.Sprintf("start_time >= $%d", len(args)+1))
		args = append(args, *filter.StartAfter)
	}
	if filter.EndBefore != nil {
		conditions = append(conditions, fmt.Sprintf("end_time <= $%d", len(args)+1))
		args = append(args, *filter.EndBefore)
	}

	query := fmt.Sprintf("SELECT %s FROM courses WHERE %s ORDER BY name ASC",
		courseColumns, strings.Join(conditions, " AND "))

	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("list active courses: %w", err)
	}
	return r.attachEnrollments(ctx, courses)
}

// ListAll returns every course ordered by name, with enrollments attached.
func (r *CourseRepository) ListAll(ctx context.Context) ([]models.CourseWithEnrollments, error) {
	query := fmt.Sprintf("SELECT %s FROM courses ORDER BY name ASC", courseColumns)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return r.attachEnrollments(ctx, courses)
}

func (r *CourseRepository) attachEnrollments(ctx context.Context, courses []models.Course) ([]models.CourseWithEnrollments, error) {
	result := make([]models.CourseWithEnrollments, len(courses))
	if len(courses) == 0 {
		return result, nil
	}

	placeholders := make([]string, len(courses))
	args := make([]interface{}, len(courses))
	for i, c := range courses {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = c.ID
	}
	query := fmt.Sprintf(`SELECT id, course_id, student_id, requested_at, status
        FROM enrollments WHERE course_id IN (%s) ORDER BY id ASC`, strings.Join(placeholders, ","))

	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, fmt.Errorf("load course enrollments: %w", err)
	}

	byCourse := make(map[int64][]models.Enrollment, len(courses))
	for _, e := range enrollments {
		byCourse[e.CourseID] = append(byCourse[e.CourseID], e)
	}
	for i, c := range courses {
		result[i] = models.CourseWithEnrollments{Course: c, Enrollments: byCourse[c.ID]}
	}
	return result, nil
}

// Insert persists a new course and assigns its ID and initial version.
func (r *CourseRepository) Insert(ctx context.Context, course *models.Course) error {
	const query = `INSERT INTO courses (code, name, credits, capacity, start_time, end_time, active, version, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, 1, NOW(), NOW())
        RETURNING id, version, created_at, updated_at`
	row := r.db.QueryRowxContext(ctx, query,
		course.Code, course.Name, course.Credits, course.Capacity,
		course.StartTime, course.EndTime, course.Active)
	if err := row.Scan(&course.ID, &course.Version, &course.CreatedAt, &course.UpdatedAt); err != nil {
		return fmt.Errorf("insert course: %w", err)
	}
	return nil
}

// Update persists course changes guarded by the optimistic version. A stale
// version yields ErrVersionConflict without mutating the row.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	const query = `UPDATE courses
        SET code = $3, name = $4, credits = $5, capacity = $6, start_time = $7, end_time = $8, active = $9,
            version = version + 1, updated_at = NOW()
        WHERE id = $1 AND version = $2`
	res, err := r.db.ExecContext(ctx, query,
		course.ID, course.Version,
		course.Code, course.Name, course.Credits, course.Capacity,
		course.StartTime, course.EndTime, course.Active)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update course rows affected: %w", err)
	}
	if affected == 0 {
		return ErrVersionConflict
	}
	course.Version++
	return nil
}

// Summary aggregates coordinator dashboard counts.
func (r *CourseRepository) Summary(ctx context.Context) (*models.CoordinatorSummary, error) {
	const query = `SELECT
        (SELECT COUNT(*) FROM courses) AS total_courses,
        (SELECT COUNT(*) FROM courses WHERE active = TRUE) AS active_courses,
        (SELECT COUNT(*) FROM enrollments WHERE status = 'PENDING') AS pending_enrollments,
        (SELECT COUNT(*) FROM enrollments WHERE status = 'CONFIRMED') AS confirmed_enrollments`
	var summary models.CoordinatorSummary
	if err := r.db.GetContext(ctx, &summary, query); err != nil {
		return nil, fmt.Errorf("coordinator summary: %w", err)
	}
	return &summary, nil
}
