package model

import (
	"encoding/json"
	"log"
	"slices"

	"github.com/samber/lo"
)

// Schedule is a set of mutually compatible sections. Sections are pushed and popped in stack order
type Schedule struct {
	sections []*ClassSection
}

func NewSchedule(sections ...*ClassSection) *Schedule {
	schedule := &Schedule{sections: make([]*ClassSection, 0, len(sections))}
	for _, section := range sections {
		schedule.Push(section)
	}
	return schedule
}

// Push adds the section unless it conflicts with a section already in the schedule, in which case the schedule is left untouched
func (schedule *Schedule) Push(section *ClassSection) bool {
	if lo.SomeBy(schedule.sections, func(held *ClassSection) bool { return section.ConflictsWith(held) }) {
		return false
	}
	schedule.sections = append(schedule.sections, section)
	return true
}

// PopLast removes the most recently pushed section. Popping an empty schedule is a programming error
func (schedule *Schedule) PopLast() {
	if len(schedule.sections) == 0 {
		log.Panic("cannot pop a section from an empty schedule")
	}
	last := len(schedule.sections) - 1
	schedule.sections[last] = nil
	schedule.sections = schedule.sections[:last]
}

func (schedule *Schedule) Size() int {
	return len(schedule.sections)
}

func (schedule *Schedule) Contains(section *ClassSection) bool {
	return lo.SomeBy(schedule.sections, func(held *ClassSection) bool { return held.Equal(section) })
}

// Sections returns the held sections in push order
func (schedule *Schedule) Sections() []*ClassSection {
	return slices.Clone(schedule.sections)
}

// Clone returns an independent snapshot. Sections themselves are shared since they are never mutated during a search
func (schedule *Schedule) Clone() *Schedule {
	return &Schedule{sections: slices.Clone(schedule.sections)}
}

// EarliestStart scans every defined meeting of every section. ok is false when there is none
func (schedule *Schedule) EarliestStart() (earliest TimeOfDay, ok bool) {
	for _, span := range schedule.definedSpans() {
		if !ok || span.Start() < earliest {
			earliest = span.Start()
			ok = true
		}
	}
	return earliest, ok
}

// LatestEnd scans every defined meeting of every section. ok is false when there is none
func (schedule *Schedule) LatestEnd() (latest TimeOfDay, ok bool) {
	for _, span := range schedule.definedSpans() {
		if !ok || span.End() > latest {
			latest = span.End()
			ok = true
		}
	}
	return latest, ok
}

func (schedule *Schedule) definedSpans() []TimeSpan {
	spans := make([]TimeSpan, 0)
	for _, section := range schedule.sections {
		for _, span := range section.Meetings {
			if !span.NeverConflicts() {
				spans = append(spans, span)
			}
		}
	}
	return spans
}

func (schedule *Schedule) MarshalJSON() ([]byte, error) {
	if schedule.sections == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(schedule.sections)
}
