package model

import (
	"context"
	"fmt"

	"github.com/samber/lo"
)

type fakeProvider struct {
	courses map[string][]*ClassSection
	calls   []string
}

func (provider *fakeProvider) SectionsForCourse(_ context.Context, courseId string) ([]*ClassSection, error) {
	provider.calls = append(provider.calls, courseId)
	sections, ok := provider.courses[courseId]
	if !ok {
		return nil, fmt.Errorf("course %v: %w", courseId, ErrCourseNotFound)
	}
	return sections, nil
}

func span(startHour, startMinute, endHour, endMinute int) TimeSpan {
	return NewTimeSpan(NewTimeOfDay(startHour, startMinute), NewTimeOfDay(endHour, endMinute))
}

// section builds a section meeting at the same span on every given day
func section(courseId, sectionId, days string, meeting TimeSpan) *ClassSection {
	meetings := make(map[DayCode]TimeSpan)
	for _, day := range days {
		meetings[DayCode(day)] = meeting
	}
	return NewClassSection(courseId+" title", courseId, sectionId, meetings)
}

func scheduleIds(schedules []*Schedule) [][]string {
	return lo.Map(schedules, func(schedule *Schedule, _ int) []string {
		return lo.Map(schedule.Sections(), func(section *ClassSection, _ int) string { return section.String() })
	})
}
