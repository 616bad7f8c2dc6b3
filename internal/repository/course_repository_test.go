package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-enroll-api/internal/models"
)

func newCourseMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func courseRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "code", "name", "credits", "capacity", "start_time", "end_time", "active", "version", "created_at", "updated_at"})
}

func TestCourseRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newCourseMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, code, name, credits, capacity, start_time, end_time, active, version, created_at, updated_at FROM courses WHERE id = $1")).
		WithArgs(int64(1)).
		WillReturnRows(courseRows().AddRow(int64(1), "CS101", "Algorithms", 3, 30, "08:00:00", "10:00:00", true, 1, time.Now(), time.Now()))

	course, err := repo.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "CS101", course.Code)
	assert.Equal(t, models.NewTimeOfDay(8, 0), course.StartTime)
	assert.Equal(t, models.NewTimeOfDay(10, 0), course.EndTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryExistsCode(t *testing.T) {
	db, mock, cleanup := newCourseMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM courses WHERE code = $1 LIMIT 1")).
		WithArgs("CS101").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsCode(context.Background(), "CS101", 0)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryExistsCodeExcludesSelf(t *testing.T) {
	db, mock, cleanup := newCourseMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM courses WHERE code = $1 AND id <> $2 LIMIT 1")).
		WithArgs("CS101", int64(3)).
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.ExistsCode(context.Background(), "CS101", 3)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryListActiveAttachesEnrollments(t *testing.T) {
	db, mock, cleanup := newCourseMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, code, name, credits, capacity, start_time, end_time, active, version, created_at, updated_at FROM courses WHERE active = TRUE ORDER BY name ASC")).
		WillReturnRows(courseRows().
			AddRow(int64(1), "CS101", "Algorithms", 3, 30, "08:00:00", "10:00:00", true, 1, time.Now(), time.Now()).
			AddRow(int64(2), "CS201", "Data Structures", 3, 30, "10:00:00", "12:00:00", true, 1, time.Now(), time.Now()))
	mock.ExpectQuery("SELECT id, course_id, student_id, requested_at, status").
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "course_id", "student_id", "requested_at", "status"}).
			AddRow(int64(9), int64(2), "student-1", time.Now(), "PENDING"))

	courses, err := repo.ListActive(context.Background(), models.CourseFilter{})
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Empty(t, courses[0].Enrollments)
	require.Len(t, courses[1].Enrollments, 1)
	assert.Equal(t, models.EnrollmentStatusPending, courses[1].Enrollments[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryListActiveFiltered(t *testing.T) {
	db, mock, cleanup := newCourseMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	min := 3
	mock.ExpectQuery(regexp.QuoteMeta("WHERE active = TRUE AND (name ILIKE $1 OR code ILIKE $1) AND credits >= $2 ORDER BY name ASC")).
		WithArgs("%algo%", 3).
		WillReturnRows(courseRows())

	courses, err := repo.ListActive(context.Background(), models.CourseFilter{Search: "algo", CreditsMin: &min})
	require.NoError(t, err)
	assert.Empty(t, courses)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryInsert(t *testing.T) {
	db, mock, cleanup := newCourseMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	now := time.Now()
	mock.ExpectQuery("INSERT INTO courses").
		WithArgs("CS101", "Algorithms", 3, 30, sqlmock.AnyArg(), sqlmock.AnyArg(), true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "version", "created_at", "updated_at"}).AddRow(int64(7), 1, now, now))

	course := &models.Course{
		Code: "CS101", Name: "Algorithms", Credits: 3, Capacity: 30,
		StartTime: models.NewTimeOfDay(8, 0), EndTime: models.NewTimeOfDay(10, 0), Active: true,
	}
	err := repo.Insert(context.Background(), course)
	require.NoError(t, err)
	assert.Equal(t, int64(7), course.ID)
	assert.Equal(t, 1, course.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newCourseMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec("UPDATE courses").
		WithArgs(int64(7), 1, "CS101", "Algorithms", 3, 30, sqlmock.AnyArg(), sqlmock.AnyArg(), true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	course := &models.Course{
		ID: 7, Version: 1, Code: "CS101", Name: "Algorithms", Credits: 3, Capacity: 30,
		StartTime: models.NewTimeOfDay(8, 0), EndTime: models.NewTimeOfDay(10, 0), Active: true,
	}
	err := repo.Update(context.Background(), course)
	require.NoError(t, err)
	assert.Equal(t, 2, course.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryUpdateStaleVersion(t *testing.T) {
	db, mock, cleanup := newCourseMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec("UPDATE courses").
		WithArgs(int64(7), 1, "CS101", "Algorithms", 3, 30, sqlmock.AnyArg(), sqlmock.AnyArg(), true).
		WillReturnResult(sqlmock.NewResult(0, 0))

	course := &models.Course{
		ID: 7, Version: 1, Code: "CS101", Name: "Algorithms", Credits: 3, Capacity: 30,
		StartTime: models.NewTimeOfDay(8, 0), EndTime: models.NewTimeOfDay(10, 0), Active: true,
	}
	err := repo.Update(context.Background(), course)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrVersionConflict))
	assert.Equal(t, 1, course.Version, "stale update must not bump the in-memory version")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositorySummary(t *testing.T) {
	db, mock, cleanup := newCourseMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"total_courses", "active_courses", "pending_enrollments", "confirmed_enrollments"}).
			AddRow(5, 4, 2, 7))

	summary, err := repo.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, summary.TotalCourses)
	assert.Equal(t, 4, summary.ActiveCourses)
	assert.Equal(t, 2, summary.PendingEnrollments)
	assert.Equal(t, 7, summary.ConfirmedEnrollments)
	assert.NoError(t, mock.ExpectationsWereMet())
}
