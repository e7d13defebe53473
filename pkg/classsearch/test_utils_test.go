package classsearch

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

const servletPath = "/reg/srch/ClassSearchServlet"

type fakeRow struct {
	course     string
	title      string
	totalSeats string
	openSeats  string
	crn        string
	instructor string
	times      string
}

// Department tables served by the fake site
var fakeDepartments = map[string][]fakeRow{
	"CSE": {
		{"CSE30331 - 01", "Data Structures", "40", "5", "11111", "Bui, Peter\n", "MWF - 10:30A - 11:20A"},
		{"CSE30331 - 02", "Data Structures", "40", "0", "11112", "Bui, Peter", "TR - 2:00P - 3:15P"},
		{"CSE20110 - 01", "Discrete Mathematics", "60", "12", "11113", "Staff", "TBA"},
	},
	"CHEM": {
		{"CHEM10171 - 01", "General Chemistry", "120", "30", "22221", "Smith, Jane", "(1)MWF - 9:25A - 10:15A (2)T - 8:00A - 8:50A"},
		{"CHEM11171 - 01", "General Chemistry Lab", "24", "4", "22222", "Jones, Bob", "R - 2:00P - 4:50P"},
		{"CHEM11171 - 02", "General Chemistry Lab", "24", "0", "22223", "Jones, Bob", "R - 9:30A - 12:20P"},
	},
}

// Corequisite listings of course pages, by CRN
var fakeCorequisites = map[string][]string{
	"22221": {"CHEM 11171"},
	"22222": {"CHEM 10171"},
	"22223": {"CHEM 10171"},
}

type countingRecorder struct {
	succeeded atomic.Int32
	failed    atomic.Int32
	hits      atomic.Int32
	misses    atomic.Int32
}

func (recorder *countingRecorder) ObserveRequest(_ string, ok bool) {
	if ok {
		recorder.succeeded.Add(1)
	} else {
		recorder.failed.Add(1)
	}
}

func (recorder *countingRecorder) ObserveTableLookup(hit bool) {
	if hit {
		recorder.hits.Add(1)
	} else {
		recorder.misses.Add(1)
	}
}

type fakeSite struct {
	server          *httptest.Server
	recorder        *countingRecorder
	departmentCalls atomic.Int32
	coursePageCalls atomic.Int32
}

func newFakeSite(t *testing.T) *fakeSite {
	site := &fakeSite{recorder: &countingRecorder{}}
	site.server = httptest.NewServer(http.HandlerFunc(site.handle))
	t.Cleanup(site.server.Close)
	return site
}

func (site *fakeSite) searchURL() string {
	return site.server.URL + servletPath
}

func (site *fakeSite) client() *Client {
	config := DefaultClientConfig()
	config.SearchURL = site.searchURL()
	config.RequestsPerSecond = 1000
	config.RequestBurst = 1000
	config.RequestTimeout = 5 * time.Second
	return NewClient(config, site.recorder, zerolog.Nop())
}

func (site *fakeSite) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != servletPath {
		http.NotFound(w, r)
		return
	}

	switch {
	case r.Method == http.MethodPost:
		site.departmentCalls.Add(1)
		_ = r.ParseForm()
		if r.PostForm.Get("TERM") == "" || r.PostForm.Get("ATTR") != "0ANY" {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		rows, ok := fakeDepartments[r.PostForm.Get("SUBJ")]
		if !ok {
			fmt.Fprint(w, "<html><body><p>No courses were found</p></body></html>")
			return
		}
		fmt.Fprint(w, resultPage(rows))
	case r.URL.Query().Get("CRN") != "":
		site.coursePageCalls.Add(1)
		fmt.Fprint(w, coursePage(fakeCorequisites[r.URL.Query().Get("CRN")]))
	default:
		fmt.Fprint(w, searchPage)
	}
}

const searchPage = `<html><body><form>
<select name="TERM">
  <option value="202420">Fall Semester 2024</option>
  <option value="202410">Summer Session 2024</option>
</select>
<select name="SUBJ"><option value="CSE">Computer Science</option></select>
</form></body></html>`

func resultPage(rows []fakeRow) string {
	var builder strings.Builder
	builder.WriteString(`<html><body><table id="resulttable"><thead><tr><th>Course - Sec</th><th>Title</th></tr></thead><tbody>`)
	for _, row := range rows {
		crn := row.crn
		fmt.Fprintf(&builder, `<tr><td><a href="#" onclick="javascript:openWindow('ClassSearchServlet?CRN=%v&amp;TERM=202420')">%v</a></td>`, crn, row.course)
		fmt.Fprintf(&builder, `<td>%v</td><td>3</td><td>N</td><td>%v</td><td>%v</td><td></td><td>%v</td><td></td><td>%v</td><td>%v</td><td>DBRT 102</td></tr>`,
			row.title, row.totalSeats, row.openSeats, crn, row.instructor, row.times)
	}
	builder.WriteString(`</tbody></table></body></html>`)
	return builder.String()
}

func coursePage(corequisites []string) string {
	var builder strings.Builder
	builder.WriteString(`<html><body><table class="datadisplaytable" summary="details"><tr><td class="dddefault">`)
	builder.WriteString(`<span class="fieldlabeltext">Attributes:</span> Undergraduate<br>`)
	if len(corequisites) > 0 {
		builder.WriteString(`<span class="fieldlabeltext">Corequisites:</span><br>`)
		for _, corequisite := range corequisites {
			fmt.Fprintf(&builder, "%v (Lab)<br>", corequisite)
		}
	}
	builder.WriteString(`<span class="fieldlabeltext">Restrictions:</span> Not open to CSE 99999 students</td></tr></table></body></html>`)
	return builder.String()
}
