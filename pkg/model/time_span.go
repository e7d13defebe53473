package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type DayCode string

const (
	Monday    DayCode = "M"
	Tuesday   DayCode = "T"
	Wednesday DayCode = "W"
	Thursday  DayCode = "R"
	Friday    DayCode = "F"
	Undefined DayCode = "U" // Meeting time is unknown
)

var Days = []DayCode{Monday, Tuesday, Wednesday, Thursday, Friday, Undefined}

func ParseDayCode(day string) (DayCode, error) {
	code := DayCode(strings.ToUpper(strings.TrimSpace(day)))
	for _, known := range Days {
		if code == known {
			return code, nil
		}
	}
	return "", fmt.Errorf("unknown day code \"%v\"", day)
}

// TimeOfDay counts minutes since midnight
type TimeOfDay uint16

func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ParseTimeOfDay accepts the 24-hour "HH:MM" format
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	hourStr, minuteStr, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok {
		return 0, fmt.Errorf("invalid time of day \"%v\"", value)
	}

	hour, err := strconv.Atoi(hourStr)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in time of day \"%v\"", value)
	}
	minute, err := strconv.Atoi(minuteStr)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in time of day \"%v\"", value)
	}

	return NewTimeOfDay(hour, minute), nil
}

func (t TimeOfDay) Hour() int {
	return int(t) / 60
}

func (t TimeOfDay) Minute() int {
	return int(t) % 60
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// TimeSpan is the start and end of a single meeting on a given day
type TimeSpan struct {
	start          TimeOfDay
	end            TimeOfDay
	neverConflicts bool
}

func NewTimeSpan(start, end TimeOfDay) TimeSpan {
	return TimeSpan{start: start, end: end}
}

// UndefinedTimeSpan represents a meeting whose time has not been published. It never conflicts with anything
func UndefinedTimeSpan() TimeSpan {
	return TimeSpan{neverConflicts: true}
}

func (span TimeSpan) Start() TimeOfDay {
	return span.start
}

func (span TimeSpan) End() TimeOfDay {
	return span.end
}

func (span TimeSpan) NeverConflicts() bool {
	return span.neverConflicts
}

// ConflictsWith reports whether both spans cannot be attended. Spans that merely touch (one ends at the very minute the other starts) conflict
func (span TimeSpan) ConflictsWith(other TimeSpan) bool {
	if span.neverConflicts || other.neverConflicts {
		return false
	}

	before := span.start < other.start && span.end < other.start
	after := span.start > other.end && span.end > other.end
	return !before && !after
}

func (span TimeSpan) String() string {
	if span.neverConflicts {
		return "TBA"
	}
	return span.start.String() + "-" + span.end.String()
}

type timeSpanJson struct {
	Start     string `json:"start,omitempty"`
	End       string `json:"end,omitempty"`
	Undefined bool   `json:"undefined,omitempty"`
}

func (span TimeSpan) MarshalJSON() ([]byte, error) {
	if span.neverConflicts {
		return json.Marshal(timeSpanJson{Undefined: true})
	}
	return json.Marshal(timeSpanJson{Start: span.start.String(), End: span.end.String()})
}
