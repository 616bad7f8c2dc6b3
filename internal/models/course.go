package models

import "time"

// Course represents an offered course in the catalog.
type Course struct {
	ID        int64     `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	Credits   int       `db:"credits" json:"credits"`
	Capacity  int       `db:"capacity" json:"capacity"`
	StartTime TimeOfDay `db:"start_time" json:"start_time"`
	EndTime   TimeOfDay `db:"end_time" json:"end_time"`
	Active    bool      `db:"active" json:"active"`
	Version   int       `db:"version" json:"version"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CourseWithEnrollments decorates a course with its enrollment rows so seat
// availability can be derived without another query.
type CourseWithEnrollments struct {
	Course
	Enrollments []Enrollment `json:"enrollments"`
}

// OccupiedSeats counts enrollments holding a seat (confirmed or pending).
func OccupiedSeats(enrollments []Enrollment) int {
	occupied := 0
	for _, e := range enrollments {
		if e.Status == EnrollmentStatusConfirmed || e.Status == EnrollmentStatusPending {
			occupied++
		}
	}
	return occupied
}

// AvailableSeats derives remaining capacity. Never persisted.
func (c *CourseWithEnrollments) AvailableSeats() int {
	return c.Capacity - OccupiedSeats(c.Enrollments)
}

// CourseFilter captures the optional catalog search criteria.
type CourseFilter struct {
	Search     string
	CreditsMin *int
	CreditsMax *int
	StartAfter *TimeOfDay
	EndBefore  *TimeOfDay
}

// IsZero reports whether no filter criteria are set.
func (f CourseFilter) IsZero() bool {
	return f.Search == "" && f.CreditsMin == nil && f.CreditsMax == nil &&
		f.StartAfter == nil && f.EndBefore == nil
}

// CoordinatorSummary aggregates counts for the coordinator dashboard.
type CoordinatorSummary struct {
	TotalCourses         int `db:"total_courses" json:"total_courses"`
	ActiveCourses        int `db:"active_courses" json:"active_courses"`
	PendingEnrollments   int `db:"pending_enrollments" json:"pending_enrollments"`
	ConfirmedEnrollments int `db:"confirmed_enrollments" json:"confirmed_enrollments"`
}
