package model

import (
	"context"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func newTestBuilder(courses map[string][]*ClassSection) (ScheduleBuilder, *fakeProvider) {
	provider := &fakeProvider{courses: courses}
	return NewScheduleBuilder(provider, zerolog.Nop()), provider
}

func TestBuildIndependentCourses(t *testing.T) {
	t.Run("Only the compatible combination survives", func(t *testing.T) {
		//** Arrange
		builder, _ := newTestBuilder(map[string][]*ClassSection{
			"A": {section("A", "A1", "M", span(9, 0, 9, 50)), section("A", "A2", "M", span(10, 0, 10, 50))},
			"B": {section("B", "B1", "M", span(9, 30, 9, 55))},
		})

		//** Act
		schedules, errors := builder.Build(context.Background(), []string{"A", "B"})

		//** Assert
		assert.Empty(t, errors)
		assert.Equal(t, [][]string{{"A-A2", "B-B1"}}, scheduleIds(schedules))
	})

	t.Run("Overlap with every section yields no schedule", func(t *testing.T) {
		//** Arrange
		// B1 (9:30-10:20) overlaps both A1 (9:00-9:50) and A2 (10:00-10:50)
		builder, _ := newTestBuilder(map[string][]*ClassSection{
			"A": {section("A", "A1", "M", span(9, 0, 9, 50)), section("A", "A2", "M", span(10, 0, 10, 50))},
			"B": {section("B", "B1", "M", span(9, 30, 10, 20))},
		})

		//** Act
		schedules, errors := builder.Build(context.Background(), []string{"A", "B"})

		//** Assert
		assert.Empty(t, errors)
		assert.Empty(t, schedules)
	})

	t.Run("Every combination in chain order", func(t *testing.T) {
		//** Arrange
		builder, _ := newTestBuilder(map[string][]*ClassSection{
			"A": {section("A", "01", "M", span(8, 0, 8, 50)), section("A", "02", "T", span(8, 0, 8, 50))},
			"B": {section("B", "01", "W", span(8, 0, 8, 50)), section("B", "02", "R", span(8, 0, 8, 50))},
			"C": {section("C", "01", "F", span(8, 0, 8, 50))},
		})

		//** Act
		schedules, errors := builder.Build(context.Background(), []string{"A", "B", "C"})

		//** Assert
		assert.Empty(t, errors)
		assert.Equal(t, [][]string{
			{"A-01", "B-01", "C-01"},
			{"A-01", "B-02", "C-01"},
			{"A-02", "B-01", "C-01"},
			{"A-02", "B-02", "C-01"},
		}, scheduleIds(schedules))
	})
}

func TestBuildWithCorequisites(t *testing.T) {
	t.Run("One schedule per corequisite section", func(t *testing.T) {
		//** Arrange
		c1 := section("C", "C1", "MWF", span(9, 0, 9, 50))
		c1.AddCorequisiteGroup("D", []*ClassSection{
			section("D", "D1", "T", span(14, 0, 15, 50)),
			section("D", "D2", "T", span(14, 30, 16, 20)),
		})
		builder, _ := newTestBuilder(map[string][]*ClassSection{"C": {c1}})

		//** Act
		schedules, errors := builder.Build(context.Background(), []string{"C"})

		//** Assert
		assert.Empty(t, errors)
		assert.Equal(t, [][]string{{"C-C1", "D-D1"}, {"C-C1", "D-D2"}}, scheduleIds(schedules))
	})

	t.Run("Corequisites are combined before the remaining courses", func(t *testing.T) {
		//** Arrange
		lecture1 := section("CHEM10171", "01", "MWF", span(9, 0, 9, 50))
		lecture1.AddCorequisiteGroup("CHEM11171", []*ClassSection{
			section("CHEM11171", "01", "T", span(8, 0, 9, 50)),
			section("CHEM11171", "02", "R", span(8, 0, 9, 50)),
		})
		lecture1.AddCorequisiteGroup("CHEM12171", []*ClassSection{
			section("CHEM12171", "01", "F", span(13, 0, 13, 50)),
		})
		lecture2 := section("CHEM10171", "02", "MWF", span(11, 0, 11, 50))
		other := []*ClassSection{
			section("MATH10560", "01", "T", span(9, 30, 10, 45)),
			section("MATH10560", "02", "MWF", span(12, 0, 12, 50)),
		}
		builder, _ := newTestBuilder(map[string][]*ClassSection{
			"CHEM10171": {lecture1, lecture2},
			"MATH10560": other,
		})

		//** Act
		schedules, errors := builder.Build(context.Background(), []string{"CHEM10171", "MATH10560"})

		//** Assert
		assert.Empty(t, errors)
		assert.Equal(t, [][]string{
			{"CHEM10171-01", "CHEM11171-01", "CHEM12171-01", "MATH10560-02"},
			{"CHEM10171-01", "CHEM11171-02", "CHEM12171-01", "MATH10560-01"},
			{"CHEM10171-01", "CHEM11171-02", "CHEM12171-01", "MATH10560-02"},
			{"CHEM10171-02", "MATH10560-01"},
			{"CHEM10171-02", "MATH10560-02"},
		}, scheduleIds(schedules))
	})

	t.Run("Requested corequisite is not scheduled twice", func(t *testing.T) {
		//** Arrange
		lab := section("CHEM11171", "01", "T", span(8, 0, 9, 50))
		lecture := section("CHEM10171", "01", "MWF", span(9, 0, 9, 50))
		lecture.AddCorequisiteGroup("CHEM11171", []*ClassSection{lab})
		builder, provider := newTestBuilder(map[string][]*ClassSection{
			"CHEM10171": {lecture},
			"CHEM11171": {lab},
		})

		//** Act
		schedules, errors := builder.Build(context.Background(), []string{"CHEM10171", "CHEM11171"})

		//** Assert
		assert.Empty(t, errors)
		assert.Equal(t, []string{"CHEM10171", "CHEM11171"}, provider.calls)
		assert.Equal(t, [][]string{{"CHEM10171-01", "CHEM11171-01"}}, scheduleIds(schedules))
	})
}

func TestBuildErrors(t *testing.T) {
	t.Run("Unknown course does not prevent the others", func(t *testing.T) {
		//** Arrange
		builder, _ := newTestBuilder(map[string][]*ClassSection{
			"A": {section("A", "A1", "M", span(9, 0, 9, 50)), section("A", "A2", "M", span(10, 0, 10, 50))},
		})

		//** Act
		schedules, errors := builder.Build(context.Background(), []string{"ZZ99999", "A"})

		//** Assert
		assert.Len(t, errors, 1)
		assert.Contains(t, errors[0], "ZZ99999")
		assert.Equal(t, [][]string{{"A-A1"}, {"A-A2"}}, scheduleIds(schedules))
	})

	t.Run("Course without sections", func(t *testing.T) {
		//** Arrange
		builder, _ := newTestBuilder(map[string][]*ClassSection{"EMPTY": {}})

		//** Act
		schedules, errors := builder.Build(context.Background(), []string{"EMPTY"})

		//** Assert
		assert.Equal(t, []string{"Course EMPTY not found"}, errors)
		assert.Empty(t, schedules)
		assert.NotNil(t, schedules)
	})

	t.Run("No courses", func(t *testing.T) {
		//** Arrange
		builder, provider := newTestBuilder(map[string][]*ClassSection{})

		//** Act
		schedules, errors := builder.Build(context.Background(), []string{})

		//** Assert
		assert.Empty(t, schedules)
		assert.Empty(t, errors)
		assert.Empty(t, provider.calls)
	})
}

func TestBuildDeduplicatesRequestedCourses(t *testing.T) {
	g := NewWithT(t)

	//** Arrange
	builder, provider := newTestBuilder(map[string][]*ClassSection{
		"A": {section("A", "01", "M", span(8, 0, 8, 50))},
		"B": {section("B", "01", "T", span(8, 0, 8, 50))},
	})

	//** Act
	schedules, errors := builder.Build(context.Background(), []string{"A", "B", "A", "B", "A"})

	//** Assert
	g.Expect(errors).To(BeEmpty())
	g.Expect(provider.calls).To(Equal([]string{"A", "B"}))
	g.Expect(schedules).To(HaveLen(1))
	g.Expect(schedules[0].Sections()).To(HaveLen(2))
}

func TestBuildIsDeterministic(t *testing.T) {
	g := NewWithT(t)

	//** Arrange
	courses := map[string][]*ClassSection{}
	for i, courseId := range []string{"A", "B", "C", "D"} {
		courses[courseId] = []*ClassSection{
			section(courseId, "01", "MW", span(8+i, 0, 8+i, 50)),
			section(courseId, "02", "TR", span(8+i, 0, 8+i, 50)),
			section(courseId, "03", "F", span(13+i, 0, 13+i, 50)),
		}
	}
	builder, _ := newTestBuilder(courses)
	request := []string{"C", "A", "D", "B"}

	//** Act
	first, _ := builder.Build(context.Background(), request)
	second, _ := builder.Build(context.Background(), request)

	//** Assert
	g.Expect(first).To(HaveLen(81))
	g.Expect(scheduleIds(second)).To(Equal(scheduleIds(first)))
	for _, schedule := range first {
		g.Expect(schedule.Size()).To(Equal(4))
	}
}

func TestEnumerateSnapshotsAreIndependent(t *testing.T) {
	//** Arrange
	chain := &SectionChain{}
	chain.Insert("A", []*ClassSection{section("A", "01", "M", span(8, 0, 8, 50)), section("A", "02", "T", span(8, 0, 8, 50))})
	chain.Insert("B", []*ClassSection{section("B", "01", "W", span(8, 0, 8, 50))})

	//** Act
	schedules := Enumerate(chain)
	schedules[0].PopLast()

	//** Assert
	assert.Equal(t, [][]string{{"A-01"}, {"A-02", "B-01"}}, scheduleIds(schedules))
	assert.Empty(t, Enumerate(&SectionChain{}))
}
