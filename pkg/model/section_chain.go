package model

import (
	"encoding/json"
	"log"

	"github.com/samber/lo"
)

// CourseGroup holds every candidate section of a single course and links to the next course of the chain
type CourseGroup struct {
	CourseId string
	Sections []*ClassSection
	next     *CourseGroup
}

func (group *CourseGroup) Next() *CourseGroup {
	return group.next
}

// SectionChain is an append-only linked list of course groups where every course appears at most once.
// The zero value is an empty chain ready to use
type SectionChain struct {
	head      *CourseGroup
	tail      *CourseGroup
	courseIds map[string]bool
	length    int
}

// Insert appends the sections of a course that is not yet in the chain. Duplicated courses and empty section lists are ignored
func (chain *SectionChain) Insert(courseId string, sections []*ClassSection) {
	if chain.Contains(courseId) || len(sections) == 0 {
		return
	}
	if lo.Contains(sections, nil) {
		log.Panicf("cannot insert a nil section for course \"%v\"", courseId)
	}

	if chain.courseIds == nil {
		chain.courseIds = make(map[string]bool)
	}
	chain.courseIds[courseId] = true

	group := &CourseGroup{
		CourseId: courseId,
		Sections: sections,
	}
	if chain.head == nil {
		chain.head = group
	} else {
		chain.tail.next = group
	}
	chain.tail = group
	chain.length++
}

func (chain *SectionChain) Contains(courseId string) bool {
	return chain.courseIds[courseId]
}

func (chain *SectionChain) IsEmpty() bool {
	return chain.head == nil
}

func (chain *SectionChain) Head() *CourseGroup {
	return chain.head
}

func (chain *SectionChain) Len() int {
	return chain.length
}

// Groups returns the course groups in insertion order
func (chain *SectionChain) Groups() []*CourseGroup {
	groups := make([]*CourseGroup, 0, chain.length)
	for group := chain.head; group != nil; group = group.next {
		groups = append(groups, group)
	}
	return groups
}

// CourseIds returns the course identifiers in insertion order
func (chain *SectionChain) CourseIds() []string {
	return lo.Map(chain.Groups(), func(group *CourseGroup, _ int) string { return group.CourseId })
}

type courseGroupJson struct {
	CourseId string          `json:"courseId"`
	Sections []*ClassSection `json:"sections"`
}

func (chain SectionChain) MarshalJSON() ([]byte, error) {
	return json.Marshal(lo.Map(chain.Groups(), func(group *CourseGroup, _ int) courseGroupJson {
		return courseGroupJson{CourseId: group.CourseId, Sections: group.Sections}
	}))
}
