package model

import "context"

type CourseProvider interface {
	// Returns every section of the course identified by courseId. Sections may already carry their corequisite groups.
	// Fails (wrapping ErrInvalidCourseId, ErrInvalidDepartment or ErrCourseNotFound) when the identifier cannot be parsed, its department is unknown or the course does not exist
	SectionsForCourse(ctx context.Context, courseId string) ([]*ClassSection, error)
}
