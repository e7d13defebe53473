package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/limaJavier/classscheduler/pkg/model"

	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

var courseIdPattern = regexp.MustCompile(`^[A-Z]{2,5}\d{3,5}[A-Z]?$`)

type RawSection struct {
	SectionId    string
	Crn          string
	Instructor   string
	OpenSeats    int
	TotalSeats   int
	Meetings     map[string]string // Days (e.g. "MWF") to "HH:MM-HH:MM" or "TBA"
	Corequisites []string
}

type RawCourse struct {
	CourseId string
	Name     string
	Sections []RawSection
}

type RawCatalog struct {
	Courses []RawCourse
}

type section struct {
	raw      RawSection
	meetings map[model.DayCode]model.TimeSpan
}

type course struct {
	id       string
	name     string
	sections []section
}

// Catalog is an offline course provider backed by a static list of courses
type Catalog struct {
	courses map[string]course
	order   []string
}

func CatalogFromJson(file string) (*Catalog, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("cannot read catalog file: %w", err)
	}

	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return nil, fmt.Errorf("cannot parse catalog file: %w", err)
	}

	var rawCatalog RawCatalog
	if err := mapstructure.Decode(inputJson, &rawCatalog); err != nil {
		return nil, fmt.Errorf("cannot decode catalog file: %w", err)
	}
	return ProcessRawCatalog(rawCatalog)
}

func ProcessRawCatalog(rawCatalog RawCatalog) (*Catalog, error) {
	catalog := &Catalog{
		courses: make(map[string]course, len(rawCatalog.Courses)),
		order:   make([]string, 0, len(rawCatalog.Courses)),
	}

	//** Manage courses
	for _, rawCourse := range rawCatalog.Courses {
		courseId := SanitizeCourseId(rawCourse.CourseId)
		if !courseIdPattern.MatchString(courseId) {
			return nil, fmt.Errorf("course \"%v\": %w", rawCourse.CourseId, model.ErrInvalidCourseId)
		} else if _, ok := catalog.courses[courseId]; ok {
			return nil, fmt.Errorf("duplicate course \"%v\"", courseId)
		}

		current := course{
			id:       courseId,
			name:     rawCourse.Name,
			sections: make([]section, 0, len(rawCourse.Sections)),
		}

		//** Manage sections
		sectionIds := make(map[string]bool)
		for _, rawSection := range rawCourse.Sections {
			if rawSection.SectionId == "" || sectionIds[rawSection.SectionId] {
				return nil, fmt.Errorf("course \"%v\" has an empty or duplicated section \"%v\"", courseId, rawSection.SectionId)
			}
			sectionIds[rawSection.SectionId] = true

			meetings, err := parseMeetings(rawSection.Meetings)
			if err != nil {
				return nil, fmt.Errorf("section %v-%v: %w", courseId, rawSection.SectionId, err)
			}
			rawSection.Corequisites = lo.Uniq(lo.Map(rawSection.Corequisites, func(corequisite string, _ int) string {
				return SanitizeCourseId(corequisite)
			}))
			current.sections = append(current.sections, section{raw: rawSection, meetings: meetings})
		}

		catalog.courses[courseId] = current
		catalog.order = append(catalog.order, courseId)
	}

	//** Manage corequisites
	for _, current := range catalog.courses {
		for _, section := range current.sections {
			for _, corequisite := range section.raw.Corequisites {
				if corequisite == current.id {
					return nil, fmt.Errorf("section %v-%v lists its own course as corequisite", current.id, section.raw.SectionId)
				} else if _, ok := catalog.courses[corequisite]; !ok {
					return nil, fmt.Errorf("section %v-%v has unknown corequisite \"%v\"", current.id, section.raw.SectionId, corequisite)
				}
			}
		}
	}

	return catalog, nil
}

// SectionsForCourse resolves corequisites one level deep, corequisites of corequisites are left out
func (catalog *Catalog) SectionsForCourse(_ context.Context, courseId string) ([]*model.ClassSection, error) {
	courseId = SanitizeCourseId(courseId)
	if !courseIdPattern.MatchString(courseId) {
		return nil, fmt.Errorf("invalid course number format for %v: %w", courseId, model.ErrInvalidCourseId)
	}
	return catalog.sections(courseId, true)
}

func (catalog *Catalog) SectionForCourse(ctx context.Context, courseId, sectionId string) (*model.ClassSection, error) {
	sections, err := catalog.SectionsForCourse(ctx, courseId)
	if err != nil {
		return nil, err
	}

	sectionId = strings.TrimSpace(sectionId)
	section, ok := lo.Find(sections, func(section *model.ClassSection) bool { return section.SectionId == sectionId })
	if !ok {
		return nil, fmt.Errorf("%v-%v: %w", SanitizeCourseId(courseId), sectionId, model.ErrSectionNotFound)
	}
	return section, nil
}

// CourseIds returns the course identifiers in catalog order
func (catalog *Catalog) CourseIds() []string {
	return slices.Clone(catalog.order)
}

func (catalog *Catalog) sections(courseId string, addCorequisites bool) ([]*model.ClassSection, error) {
	current, ok := catalog.courses[courseId]
	if !ok {
		return nil, fmt.Errorf("course %v: %w", courseId, model.ErrCourseNotFound)
	}

	sections := make([]*model.ClassSection, 0, len(current.sections))
	for _, section := range current.sections {
		classSection := model.NewClassSection(current.name, current.id, section.raw.SectionId, section.meetings)
		classSection.Crn = section.raw.Crn
		classSection.Instructor = section.raw.Instructor
		classSection.OpenSeats = section.raw.OpenSeats
		classSection.TotalSeats = section.raw.TotalSeats

		if addCorequisites {
			for _, corequisite := range section.raw.Corequisites {
				corequisiteSections, err := catalog.sections(corequisite, false)
				if err != nil {
					return nil, err
				}
				classSection.AddCorequisiteGroup(corequisite, corequisiteSections)
			}
		}
		sections = append(sections, classSection)
	}
	return sections, nil
}

func SanitizeCourseId(courseId string) string {
	return strings.ToUpper(strings.Join(strings.Fields(courseId), ""))
}

func parseMeetings(rawMeetings map[string]string) (map[model.DayCode]model.TimeSpan, error) {
	meetings := make(map[model.DayCode]model.TimeSpan)
	for days, rawSpan := range rawMeetings {
		span, err := parseTimeSpan(rawSpan)
		if err != nil {
			return nil, err
		}

		for _, day := range days {
			code, err := model.ParseDayCode(string(day))
			if err != nil {
				return nil, err
			}
			if _, ok := meetings[code]; ok {
				return nil, fmt.Errorf("day %c listed twice", day)
			}
			meetings[code] = span
		}
	}
	return meetings, nil
}

func parseTimeSpan(rawSpan string) (model.TimeSpan, error) {
	rawSpan = strings.TrimSpace(rawSpan)
	if strings.EqualFold(rawSpan, "TBA") {
		return model.UndefinedTimeSpan(), nil
	}

	rawStart, rawEnd, ok := strings.Cut(rawSpan, "-")
	if !ok {
		return model.TimeSpan{}, fmt.Errorf("invalid meeting time \"%v\"", rawSpan)
	}
	start, err := model.ParseTimeOfDay(rawStart)
	if err != nil {
		return model.TimeSpan{}, err
	}
	end, err := model.ParseTimeOfDay(rawEnd)
	if err != nil {
		return model.TimeSpan{}, err
	}
	if end < start {
		return model.TimeSpan{}, fmt.Errorf("meeting time \"%v\" ends before it starts", rawSpan)
	}
	return model.NewTimeSpan(start, end), nil
}
