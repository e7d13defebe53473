package classsearch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResultTable(t *testing.T) {
	t.Run("Correct flow", func(t *testing.T) {
		//** Act
		rows, err := parseResultTable(strings.NewReader(resultPage(fakeDepartments["CSE"])), "https://example.edu/ClassSearchServlet")

		//** Assert
		require.Nil(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, Row{
			CourseField: "CSE30331 - 01",
			Title:       "Data Structures",
			TotalSeats:  "40",
			OpenSeats:   "5",
			Crn:         "11111",
			Instructor:  "Bui, Peter\n",
			Times:       "MWF - 10:30A - 11:20A",
			Link:        "https://example.edu/ClassSearchServlet?CRN=11111&TERM=202420",
		}, rows[0])
		assert.Equal(t, "TBA", rows[2].Times)
	})

	t.Run("Short rows are skipped", func(t *testing.T) {
		page := `<table id="resulttable"><tr><td>CSE30331 - 01</td><td>Data Structures</td></tr></table>`

		rows, err := parseResultTable(strings.NewReader(page), "")

		assert.Nil(t, err)
		assert.Empty(t, rows)
	})

	t.Run("Missing table", func(t *testing.T) {
		_, err := parseResultTable(strings.NewReader("<html><body><table id=\"other\"></table></body></html>"), "")
		assert.Equal(t, errMissingResultTable, err)
	})
}

func TestParseTerms(t *testing.T) {
	terms, err := parseTerms(strings.NewReader(searchPage))
	assert.Nil(t, err)
	assert.Equal(t, []string{"202420", "202410"}, terms)

	_, err = parseTerms(strings.NewReader("<html></html>"))
	assert.NotNil(t, err)
}

func TestParseCorequisites(t *testing.T) {
	t.Run("Listed corequisites stop at the next label", func(t *testing.T) {
		corequisites, err := parseCorequisites(strings.NewReader(coursePage([]string{"CHEM 11171", "chem 12171", "CHEM 11171"})))

		assert.Nil(t, err)
		assert.Equal(t, []string{"CHEM11171", "CHEM12171"}, corequisites)
	})

	t.Run("No corequisites label", func(t *testing.T) {
		corequisites, err := parseCorequisites(strings.NewReader(coursePage(nil)))

		assert.Nil(t, err)
		assert.Empty(t, corequisites)
	})

	t.Run("Corequisites as last entry", func(t *testing.T) {
		page := `<table class="datadisplaytable"><tr><td><span class="fieldlabeltext">Corequisites:</span> PHYS 10411</td></tr></table>`

		corequisites, err := parseCorequisites(strings.NewReader(page))

		assert.Nil(t, err)
		assert.Equal(t, []string{"PHYS10411"}, corequisites)
	})

	t.Run("Error flow", func(t *testing.T) {
		_, err := parseCorequisites(strings.NewReader("<html><body>Course not available</body></html>"))
		assert.NotNil(t, err)
	})
}
