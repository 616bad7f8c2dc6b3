package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment request.
type EnrollmentStatus string

// Possible enrollment statuses. The set is closed.
const (
	EnrollmentStatusPending   EnrollmentStatus = "PENDING"
	EnrollmentStatusConfirmed EnrollmentStatus = "CONFIRMED"
	EnrollmentStatusCancelled EnrollmentStatus = "CANCELLED"
)

// ValidEnrollmentStatus reports whether s is a member of the closed status set.
func ValidEnrollmentStatus(s EnrollmentStatus) bool {
	switch s {
	case EnrollmentStatusPending, EnrollmentStatusConfirmed, EnrollmentStatusCancelled:
		return true
	default:
		return false
	}
}

// SeatHoldingStatuses are the statuses that occupy a seat during admission.
var SeatHoldingStatuses = []EnrollmentStatus{EnrollmentStatusConfirmed, EnrollmentStatusPending}

// Enrollment captures a student's request to join a course.
type Enrollment struct {
	ID          int64            `db:"id" json:"id"`
	CourseID    int64            `db:"course_id" json:"course_id"`
	StudentID   string           `db:"student_id" json:"student_id"`
	RequestedAt time.Time        `db:"requested_at" json:"requested_at"`
	Status      EnrollmentStatus `db:"status" json:"status"`
}

// EnrollmentDetail enriches Enrollment with student and course info for
// coordinator listings and exports.
type EnrollmentDetail struct {
	Enrollment
	StudentName  string `db:"student_name" json:"student_name"`
	StudentEmail string `db:"student_email" json:"student_email"`
	CourseCode   string `db:"course_code" json:"course_code"`
	CourseName   string `db:"course_name" json:"course_name"`
}

// StudentSchedule joins an enrollment with its course's time interval, used
// by the admission engine's overlap check.
type StudentSchedule struct {
	Enrollment
	CourseCode  string    `db:"course_code" json:"course_code"`
	CourseName  string    `db:"course_name" json:"course_name"`
	CourseStart TimeOfDay `db:"course_start" json:"course_start"`
	CourseEnd   TimeOfDay `db:"course_end" json:"course_end"`
}

// EnrollmentFilter provides filters for coordinator enrollment listings.
type EnrollmentFilter struct {
	CourseID int64
	Status   EnrollmentStatus
	Page     int
	PageSize int
}
