package classsearch

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/limaJavier/classscheduler/pkg/model"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

type CorequisiteSource interface {
	// Returns the corequisite course ids listed on the course page behind link
	Corequisites(ctx context.Context, link string) ([]string, error)
}

// Provider builds class sections out of class-search department tables
type Provider struct {
	tables TableSource
	pages  CorequisiteSource
	logger zerolog.Logger
}

func NewProvider(tables TableSource, pages CorequisiteSource, logger zerolog.Logger) *Provider {
	return &Provider{
		tables: tables,
		pages:  pages,
		logger: logger.With().Str("component", "classsearch_provider").Logger(),
	}
}

// SectionsForCourse returns every section of the course. Corequisites are attached one level deep: sections of a corequisite
// course never carry corequisites of their own
func (provider *Provider) SectionsForCourse(ctx context.Context, courseId string) ([]*model.ClassSection, error) {
	return provider.sectionsForCourse(ctx, SanitizeCourseId(courseId), true)
}

func (provider *Provider) SectionForCourse(ctx context.Context, courseId, sectionId string) (*model.ClassSection, error) {
	courseId = SanitizeCourseId(courseId)
	sectionId, err := SanitizeSectionId(sectionId)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, model.ErrSectionNotFound)
	}

	rows, err := provider.courseRows(ctx, courseId)
	if err != nil {
		return nil, err
	}

	row, ok := lo.Find(rows, func(row Row) bool {
		_, rowSectionId, _ := parseCourseField(row.CourseField)
		return rowSectionId == sectionId
	})
	if !ok {
		return nil, fmt.Errorf("%v-%v: %w", courseId, sectionId, model.ErrSectionNotFound)
	}
	return provider.sectionFromRow(ctx, courseId, row, true)
}

func (provider *Provider) sectionsForCourse(ctx context.Context, courseId string, addCorequisites bool) ([]*model.ClassSection, error) {
	rows, err := provider.courseRows(ctx, courseId)
	if err != nil {
		return nil, err
	}

	sections := make([]*model.ClassSection, 0, len(rows))
	for _, row := range rows {
		section, err := provider.sectionFromRow(ctx, courseId, row, addCorequisites)
		if err != nil {
			return nil, err
		}
		sections = append(sections, section)
	}
	return sections, nil
}

// Rows of the department table belonging to the course, in table order
func (provider *Provider) courseRows(ctx context.Context, courseId string) ([]Row, error) {
	department, _, err := ParseCourseId(courseId)
	if err != nil {
		return nil, err
	}

	table, err := provider.tables.Table(ctx, department)
	if err != nil {
		return nil, fmt.Errorf("course %v: %w", courseId, err)
	}

	rows := lo.Filter(table, func(row Row, _ int) bool {
		rowCourseId, _, err := parseCourseField(row.CourseField)
		return err == nil && rowCourseId == courseId
	})
	if len(rows) == 0 {
		return nil, fmt.Errorf("course %v: %w", courseId, model.ErrCourseNotFound)
	}
	return rows, nil
}

func (provider *Provider) sectionFromRow(ctx context.Context, courseId string, row Row, addCorequisites bool) (*model.ClassSection, error) {
	_, sectionId, err := parseCourseField(row.CourseField)
	if err != nil {
		return nil, fmt.Errorf("course %v: %w", courseId, err)
	}

	meetings, err := parseMeetings(row.Times)
	if err != nil {
		provider.logger.Debug().Err(err).Str("course", courseId).Str("section", sectionId).Msg("meeting times left undefined")
		meetings = map[model.DayCode]model.TimeSpan{model.Undefined: model.UndefinedTimeSpan()}
	}

	section := model.NewClassSection(row.Title, courseId, sectionId, meetings)
	section.Crn = row.Crn
	section.Instructor = sanitizeInstructor(row.Instructor)
	section.CoursePageLink = row.Link
	if section.OpenSeats, err = parseSeats(row.OpenSeats); err != nil {
		return nil, fmt.Errorf("section %v: %w", section, err)
	}
	if section.TotalSeats, err = parseSeats(row.TotalSeats); err != nil {
		return nil, fmt.Errorf("section %v: %w", section, err)
	}

	if !addCorequisites || row.Link == "" {
		return section, nil
	}

	corequisites, err := provider.pages.Corequisites(ctx, row.Link)
	if err != nil {
		return nil, fmt.Errorf("corequisites of %v: %w", section, err)
	}
	for _, corequisite := range corequisites {
		if corequisite == courseId {
			continue
		}

		corequisiteSections, err := provider.sectionsForCourse(ctx, corequisite, false)
		if err != nil {
			return nil, fmt.Errorf("corequisite of %v: %w", section, err)
		}
		section.AddCorequisiteGroup(corequisite, corequisiteSections)
	}
	return section, nil
}

func parseSeats(seats string) (int, error) {
	seats = strings.TrimSpace(seats)
	if seats == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(seats)
	if err != nil {
		return 0, fmt.Errorf("invalid seat count \"%v\"", seats)
	}
	return value, nil
}
