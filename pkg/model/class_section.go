package model

import (
	"fmt"
	"strings"
)

// ClassSection is one offering of a course (a given time, instructor and seat pool)
type ClassSection struct {
	Name           string               `json:"name"`
	CourseId       string               `json:"courseId"`
	SectionId      string               `json:"sectionId"`
	Crn            string               `json:"crn,omitempty"`
	Instructor     string               `json:"instructor,omitempty"`
	OpenSeats      int                  `json:"openSeats"`
	TotalSeats     int                  `json:"totalSeats"`
	CoursePageLink string               `json:"-"`
	Meetings       map[DayCode]TimeSpan `json:"meetings"`
	Corequisites   SectionChain         `json:"corequisites"`
}

func NewClassSection(name, courseId, sectionId string, meetings map[DayCode]TimeSpan) *ClassSection {
	section := &ClassSection{
		Name:      name,
		CourseId:  courseId,
		SectionId: sectionId,
		Meetings:  make(map[DayCode]TimeSpan, len(meetings)),
	}
	section.AddMeetings(meetings)
	return section
}

// AddMeetings stores the meetings under upper-case day keys, replacing the ones already present for the same day
func (section *ClassSection) AddMeetings(meetings map[DayCode]TimeSpan) {
	if section.Meetings == nil {
		section.Meetings = make(map[DayCode]TimeSpan, len(meetings))
	}
	for day, span := range meetings {
		section.Meetings[DayCode(strings.ToUpper(string(day)))] = span
	}
}

// ConflictsWith reports whether both sections cannot be part of the same schedule. Two sections of the same course always conflict
func (section *ClassSection) ConflictsWith(other *ClassSection) bool {
	if section.CourseId == other.CourseId {
		return true
	}

	for day, span := range section.Meetings {
		otherSpan, ok := other.Meetings[day]
		if !ok {
			continue
		}
		if span.ConflictsWith(otherSpan) {
			return true
		}
	}
	return false
}

func (section *ClassSection) AddCorequisiteGroup(courseId string, sections []*ClassSection) {
	section.Corequisites.Insert(courseId, sections)
}

func (section *ClassSection) HasCorequisites() bool {
	return !section.Corequisites.IsEmpty()
}

// Equal compares sections by course and section identifiers only
func (section *ClassSection) Equal(other *ClassSection) bool {
	if section == nil || other == nil {
		return section == other
	}
	return section.CourseId == other.CourseId && section.SectionId == other.SectionId
}

func (section *ClassSection) String() string {
	return fmt.Sprintf("%v-%v", section.CourseId, section.SectionId)
}
