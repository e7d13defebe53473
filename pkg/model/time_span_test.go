package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimeSpanConflictsWith(t *testing.T) {
	t.Run("Overlapping spans", func(t *testing.T) {
		//** Arrange
		morning := span(9, 0, 9, 50)
		overlapping := span(9, 30, 10, 20)
		contained := span(9, 10, 9, 20)

		//** Assert
		assert.True(t, morning.ConflictsWith(overlapping))
		assert.True(t, overlapping.ConflictsWith(morning))
		assert.True(t, morning.ConflictsWith(contained))
		assert.True(t, contained.ConflictsWith(morning))
		assert.True(t, morning.ConflictsWith(morning))
	})

	t.Run("Disjoint spans", func(t *testing.T) {
		//** Arrange
		morning := span(9, 0, 9, 50)
		later := span(10, 0, 10, 50)

		//** Assert
		assert.False(t, morning.ConflictsWith(later))
		assert.False(t, later.ConflictsWith(morning))
	})

	t.Run("Adjacent spans conflict", func(t *testing.T) {
		//** Arrange
		first := span(9, 0, 10, 30)
		second := span(10, 30, 11, 20)

		//** Assert
		assert.True(t, first.ConflictsWith(second))
		assert.True(t, second.ConflictsWith(first))
	})

	t.Run("Undefined spans never conflict", func(t *testing.T) {
		//** Arrange
		undefined := UndefinedTimeSpan()
		spans := []TimeSpan{span(0, 0, 0, 0), span(9, 0, 9, 50), span(0, 0, 23, 59), UndefinedTimeSpan()}

		//** Assert
		for _, other := range spans {
			assert.False(t, undefined.ConflictsWith(other))
			assert.False(t, other.ConflictsWith(undefined))
		}
	})
}

func TestParseTimeOfDay(t *testing.T) {
	t.Run("Correct flow", func(t *testing.T) {
		value, err := ParseTimeOfDay("09:05")
		assert.Nil(t, err)
		assert.Equal(t, NewTimeOfDay(9, 5), value)
		assert.Equal(t, 9, value.Hour())
		assert.Equal(t, 5, value.Minute())
		assert.Equal(t, "09:05", value.String())

		value, err = ParseTimeOfDay(" 23:59 ")
		assert.Nil(t, err)
		assert.Equal(t, NewTimeOfDay(23, 59), value)
	})

	t.Run("Error flow", func(t *testing.T) {
		for _, value := range []string{"", "0905", "24:00", "12:60", "ab:cd", "-1:00"} {
			_, err := ParseTimeOfDay(value)
			assert.NotNil(t, err, value)
		}
	})
}

func TestParseDayCode(t *testing.T) {
	day, err := ParseDayCode("r")
	assert.Nil(t, err)
	assert.Equal(t, Thursday, day)

	_, err = ParseDayCode("S")
	assert.NotNil(t, err)
}

func TestTimeSpanMarshalJSON(t *testing.T) {
	bytes, err := json.Marshal(span(9, 0, 9, 50))
	assert.Nil(t, err)
	assert.JSONEq(t, `{"start":"09:00","end":"09:50"}`, string(bytes))

	bytes, err = json.Marshal(UndefinedTimeSpan())
	assert.Nil(t, err)
	assert.JSONEq(t, `{"undefined":true}`, string(bytes))
}
