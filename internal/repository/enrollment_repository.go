package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/uni-enroll-api/internal/models"
)

// ErrDuplicatePair signals a violation of the unique (course, student) constraint.
var ErrDuplicatePair = errors.New("enrollment already exists for course and student")

const pqUniqueViolation = "23505"

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	const query = `SELECT id, course_id, student_id, requested_at, status FROM enrollments WHERE id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindByCourseAndStudent returns the enrollment for the pair, any status.
func (r *EnrollmentRepository) FindByCourseAndStudent(ctx context.Context, courseID int64, studentID string) (*models.Enrollment, error) {
	const query = `SELECT id, course_id, student_id, requested_at, status
        FROM enrollments WHERE course_id = $1 AND student_id = $2`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, courseID, studentID); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// CountByCourseAndStatuses counts a course's enrollments in the given statuses,
// optionally excluding one enrollment row.
func (r *EnrollmentRepository) CountByCourseAndStatuses(ctx context.Context, courseID int64, statuses []models.EnrollmentStatus, excludeID int64) (int, error) {
	if len(statuses) == 0 {
		return 0, nil
	}
	args := []interface{}{courseID}
	placeholders := make([]string, len(statuses))
	for i, s := range statuses {
		placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
		args = append(args, s)
	}
	query := fmt.Sprintf("SELECT COUNT(*) FROM enrollments WHERE course_id = $1 AND status IN (%s)",
		strings.Join(placeholders, ","))
	if excludeID != 0 {
		query += fmt.Sprintf(" AND id <> $%d", len(args)+1)
		args = append(args, excludeID)
	}
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count enrollments: %w", err)
	}
	return count, nil
}

// ListByStudentAndStatuses returns the student's enrollments in the given
// statuses joined with their course intervals, ordered by enrollment ID so
// conflict reporting is deterministic.
func (r *EnrollmentRepository) ListByStudentAndStatuses(ctx context.Context, studentID string, statuses []models.EnrollmentStatus) ([]models.StudentSchedule, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	args := []interface{}{studentID}
	placeholders := make([]string, len(statuses))
	for i, s := range statuses {
		placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
		args = append(args, s)
	}
	query := fmt.Sprintf(`SELECT e.id, e.course_id, e.student_id, e.requested_at, e.status,
        c.code AS course_code, c.name AS course_name, c.start_time AS course_start, c.end_time AS course_end
        FROM enrollments e
        JOIN courses c ON c.id = e.course_id
        WHERE e.student_id = $1 AND e.status IN (%s)
        ORDER BY e.id ASC`, strings.Join(placeholders, ","))

	var schedules []models.StudentSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, fmt.Errorf("list student schedule: %w", err)
	}
	return schedules, nil
}

// Insert persists a new enrollment and assigns its ID. A concurrent insert for
// the same (course, student) pair surfaces as ErrDuplicatePair.
func (r *EnrollmentRepository) Insert(ctx context.Context, enrollment *models.Enrollment) error {
	const query = `INSERT INTO enrollments (course_id, student_id, requested_at, status)
        VALUES ($1, $2, $3, $4) RETURNING id`
	row := r.db.QueryRowxContext(ctx, query,
		enrollment.CourseID, enrollment.StudentID, enrollment.RequestedAt, enrollment.Status)
	if err := row.Scan(&enrollment.ID); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return ErrDuplicatePair
		}
		return fmt.Errorf("insert enrollment: %w", err)
	}
	return nil
}

// UpdateStatus persists a new status for an enrollment. No other field changes.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id int64, status models.EnrollmentStatus) error {
	const query = `UPDATE enrollments SET status = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status); err != nil {
		return fmt.Errorf("update enrollment status: %w", err)
	}
	return nil
}

// List returns enrollment details filtered by course and/or status, newest
// requests first, with a total count for pagination.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	base := `FROM enrollments e
JOIN users u ON u.id = e.student_id
JOIN courses c ON c.id = e.course_id`
	var conditions []string
	var args []interface{}

	if filter.CourseID != 0 {
		conditions = append(conditions, fmt.Sprintf("e.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("e.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT e.id, e.course_id, e.student_id, e.requested_at, e.status,
        u.full_name AS student_name, u.email AS student_email, c.code AS course_code, c.name AS course_name
        %s ORDER BY e.requested_at DESC LIMIT %d OFFSET %d`, base+clause, size, offset)

	var details []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &details, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}
	return details, total, nil
}

// ListByCourse returns the full roster for a course ordered by request time.
func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID int64) ([]models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.course_id, e.student_id, e.requested_at, e.status,
        u.full_name AS student_name, u.email AS student_email, c.code AS course_code, c.name AS course_name
        FROM enrollments e
        JOIN users u ON u.id = e.student_id
        JOIN courses c ON c.id = e.course_id
        WHERE e.course_id = $1
        ORDER BY e.requested_at ASC`
	var details []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &details, query, courseID); err != nil {
		return nil, fmt.Errorf("list course roster: %w", err)
	}
	return details, nil
}
