package services

import "errors"

// Sentinel errors surfaced to handlers. Handlers map these onto the
// response envelope (404, 409); anything else is a 500.
var (
	ErrStudentNotFound       = errors.New("student not found")
	ErrTeacherNotFound       = errors.New("teacher not found")
	ErrCourseNotFound        = errors.New("course not found")
	ErrMarksNotFound         = errors.New("marks not found for this student and course")
	ErrDuplicateMarks        = errors.New("marks already recorded for this student and course")
	ErrSupplementaryNotFound = errors.New("no supplementary assignment for this student and course")
)
