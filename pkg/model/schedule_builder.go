package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

type ScheduleBuilder interface {
	// Builds every conflict-free schedule that takes one section of each requested course (and of each corequisite of the chosen sections).
	// A course that cannot be resolved is reported in errors and left out, the remaining courses are still scheduled
	Build(ctx context.Context, courseIds []string) (schedules []*Schedule, errors []string)
}

type scheduleBuilder struct {
	provider CourseProvider
	logger   zerolog.Logger
}

func NewScheduleBuilder(provider CourseProvider, logger zerolog.Logger) ScheduleBuilder {
	return &scheduleBuilder{
		provider: provider,
		logger:   logger.With().Str("component", "schedule_builder").Logger(),
	}
}

func (builder *scheduleBuilder) Build(ctx context.Context, courseIds []string) (schedules []*Schedule, errors []string) {
	chain, errors := builder.gatherCourses(ctx, courseIds)
	if chain.IsEmpty() {
		return []*Schedule{}, errors
	}

	builder.logger.Info().Strs("courses", chain.CourseIds()).Msg("building schedules")
	schedules = Enumerate(chain)
	builder.logger.Debug().Int("schedules", len(schedules)).Int("errors", len(errors)).Msg("schedules built")
	return schedules, errors
}

// Resolves every distinct course through the provider and assembles the top-level chain
func (builder *scheduleBuilder) gatherCourses(ctx context.Context, courseIds []string) (*SectionChain, []string) {
	chain := &SectionChain{}
	errors := make([]string, 0)
	added := make(map[string]bool)

	courseIds = lo.Uniq(courseIds)
	builder.logger.Info().Int("courses", len(courseIds)).Msg("gathering course information")
	for _, courseId := range courseIds {
		sections, err := builder.provider.SectionsForCourse(ctx, courseId)
		if err != nil {
			builder.logger.Warn().Err(err).Str("course", courseId).Msg("cannot retrieve course")
			errors = append(errors, courseError(courseId, err.Error()))
			continue
		} else if len(sections) == 0 {
			builder.logger.Warn().Str("course", courseId).Msg("course has no sections")
			errors = append(errors, fmt.Sprintf("Course %v not found", courseId))
			continue
		}

		primary := sections[0].CourseId
		if added[primary] {
			continue
		}
		chain.Insert(primary, sections)
		added[primary] = true

		// A course pulled in as a corequisite must not be scheduled again if it's requested explicitly
		for _, corequisite := range sections[0].Corequisites.CourseIds() {
			added[corequisite] = true
		}
	}

	return chain, errors
}

// Enumerate walks the chain depth-first and returns every conflict-free combination, in chain and section order
func Enumerate(chain *SectionChain) []*Schedule {
	schedules := make([]*Schedule, 0)
	if chain.IsEmpty() {
		return schedules
	}
	walkChain(&Schedule{}, &schedules, chain.Head())
	return schedules
}

func walkChain(schedule *Schedule, schedules *[]*Schedule, group *CourseGroup) {
	if group == nil {
		*schedules = append(*schedules, schedule.Clone())
		return
	}

	for _, section := range group.Sections {
		if !schedule.Push(section) {
			continue
		}

		if section.HasCorequisites() {
			walkCorequisites(schedule, schedules, group.Next(), section.Corequisites.Head())
		} else {
			walkChain(schedule, schedules, group.Next())
		}
		schedule.PopLast()
	}
}

// Chooses one section of every corequisite group before resuming the main chain at group
func walkCorequisites(schedule *Schedule, schedules *[]*Schedule, group *CourseGroup, corequisite *CourseGroup) {
	if corequisite == nil {
		walkChain(schedule, schedules, group)
		return
	}

	for _, section := range corequisite.Sections {
		if !schedule.Push(section) {
			continue
		}
		walkCorequisites(schedule, schedules, group, corequisite.Next())
		schedule.PopLast()
	}
}

func courseError(courseId, message string) string {
	if strings.Contains(strings.ToUpper(message), strings.ToUpper(strings.ReplaceAll(courseId, " ", ""))) {
		return message
	}
	return fmt.Sprintf("%v: %v", courseId, message)
}
