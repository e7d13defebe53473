package model

import "errors"

var (
	ErrInvalidCourseId   = errors.New("invalid course number format")
	ErrInvalidDepartment = errors.New("invalid department")
	ErrCourseNotFound    = errors.New("course not found")
	ErrSectionNotFound   = errors.New("section not found")
)
