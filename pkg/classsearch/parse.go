package classsearch

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/limaJavier/classscheduler/pkg/model"

	"github.com/samber/lo"
)

var (
	courseIdPattern    = regexp.MustCompile(`^([A-Z]{2,4})(\d{5})$`)
	courseFieldPattern = regexp.MustCompile(`([A-Za-z]{2,4})\s?(\d{5})\s*-\s*(\d{2})`)
	meetingSeparator   = regexp.MustCompile(`\(\d\)`)
	whitespace         = regexp.MustCompile(`\s`)
)

// SanitizeCourseId removes every whitespace and upper-cases the identifier (e.g. " cse 30331" -> "CSE30331")
func SanitizeCourseId(courseId string) string {
	return strings.ToUpper(whitespace.ReplaceAllString(courseId, ""))
}

// ParseCourseId splits a sanitized course identifier into its department and its five-digit number
func ParseCourseId(courseId string) (department string, number string, err error) {
	match := courseIdPattern.FindStringSubmatch(courseId)
	if match == nil {
		return "", "", fmt.Errorf("invalid course number format for %v: %w", courseId, model.ErrInvalidCourseId)
	}
	return match[1], match[2], nil
}

// SanitizeSectionId normalizes section identifiers to two digits (e.g. "1" -> "01")
func SanitizeSectionId(sectionId string) (string, error) {
	sectionId = whitespace.ReplaceAllString(sectionId, "")
	if len(sectionId) == 0 || len(sectionId) > 2 || !lo.EveryBy([]rune(sectionId), func(r rune) bool { return r >= '0' && r <= '9' }) {
		return "", fmt.Errorf("invalid section number format for \"%v\"", sectionId)
	}
	if len(sectionId) < 2 {
		sectionId = "0" + sectionId
	}
	return sectionId, nil
}

// Extracts course and section identifiers from the first column of the result table (e.g. "CSE30331 - 01")
func parseCourseField(field string) (courseId string, sectionId string, err error) {
	match := courseFieldPattern.FindStringSubmatch(field)
	if match == nil {
		return "", "", fmt.Errorf("unexpected course field \"%v\"", field)
	}
	return SanitizeCourseId(match[1] + match[2]), match[3], nil
}

// Converts the class-search meeting format (e.g. "MWF - 10:30A - 11:20A", or several of those prefixed by "(1)", "(2)", ...)
// into spans keyed by day
func parseMeetings(text string) (map[model.DayCode]model.TimeSpan, error) {
	text = whitespace.ReplaceAllString(text, "")

	parts := meetingSeparator.Split(text, -1)
	if len(parts) > 1 {
		parts = parts[1:]
	}

	meetings := make(map[model.DayCode]model.TimeSpan)
	for _, part := range parts {
		fields := strings.Split(part, "-")
		if len(fields) != 3 {
			return nil, fmt.Errorf("time \"%v\" is in an unsupported format", part)
		}

		start, err := parseClock(fields[1])
		if err != nil {
			return nil, err
		}
		end, err := parseClock(fields[2])
		if err != nil {
			return nil, err
		}
		if len(fields[0]) == 0 {
			return nil, fmt.Errorf("time \"%v\" has no days", part)
		}

		span := model.NewTimeSpan(start, end)
		for _, day := range fields[0] {
			code, err := model.ParseDayCode(string(day))
			if err != nil || code == model.Undefined {
				return nil, fmt.Errorf("time \"%v\" has an unknown day \"%c\"", part, day)
			}
			meetings[code] = span
		}
	}
	return meetings, nil
}

// Converts a 12-hour clock with a trailing meridiem letter (e.g. "10:30A", "12:05P") into a time of day
func parseClock(clock string) (model.TimeOfDay, error) {
	if len(clock) < 2 {
		return 0, fmt.Errorf("invalid clock \"%v\"", clock)
	}

	meridiem := clock[len(clock)-1]
	hourStr, minuteStr, ok := strings.Cut(clock[:len(clock)-1], ":")
	if !ok || (meridiem != 'A' && meridiem != 'P') {
		return 0, fmt.Errorf("invalid clock \"%v\"", clock)
	}

	hour, err := strconv.Atoi(hourStr)
	if err != nil || hour < 1 || hour > 12 {
		return 0, fmt.Errorf("invalid hour in clock \"%v\"", clock)
	}
	minute, err := strconv.Atoi(minuteStr)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in clock \"%v\"", clock)
	}

	if hour == 12 {
		hour = 0
	}
	if meridiem == 'P' {
		hour += 12
	}
	return model.NewTimeOfDay(hour, minute), nil
}

func sanitizeInstructor(instructor string) string {
	return strings.TrimSpace(strings.ReplaceAll(instructor, "\n", ""))
}
