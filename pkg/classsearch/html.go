package classsearch

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	errMissingResultTable = errors.New("result table not found")

	coursePageLinkPattern   = regexp.MustCompile(`Servlet(\?[^'"]+)['"]`)
	corequisiteBlockPattern = regexp.MustCompile(`(?s)Corequisites:.*?(?:Comments|Restrictions)`)
	corequisiteIdPattern    = regexp.MustCompile(`[A-Za-z]{2,4} \d{5}`)
)

// Row is one line of the class-search result table, kept as raw text
type Row struct {
	CourseField string `json:"courseField"`
	Title       string `json:"title"`
	TotalSeats  string `json:"totalSeats"`
	OpenSeats   string `json:"openSeats"`
	Crn         string `json:"crn"`
	Instructor  string `json:"instructor"`
	Times       string `json:"times"`
	Link        string `json:"link,omitempty"`
}

const (
	courseCell     = 0
	titleCell      = 1
	totalSeatsCell = 4
	openSeatsCell  = 5
	crnCell        = 7
	instructorCell = 9
	timesCell      = 10
)

// Extracts the rows of table#resulttable. Course page links are resolved against searchURL
func parseResultTable(reader io.Reader, searchURL string) ([]Row, error) {
	document, err := html.Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("cannot parse result page: %w", err)
	}

	table := findFirst(document, func(node *html.Node) bool {
		return isElement(node, atom.Table) && attribute(node, "id") == "resulttable"
	})
	if table == nil {
		return nil, errMissingResultTable
	}

	body := findFirst(table, func(node *html.Node) bool { return isElement(node, atom.Tbody) })
	if body == nil {
		body = table
	}

	rows := make([]Row, 0)
	for _, tr := range children(body, atom.Tr) {
		cells := children(tr, atom.Td)
		if len(cells) <= timesCell {
			continue
		}

		rows = append(rows, Row{
			CourseField: cleanText(cells[courseCell]),
			Title:       cleanText(cells[titleCell]),
			TotalSeats:  cleanText(cells[totalSeatsCell]),
			OpenSeats:   cleanText(cells[openSeatsCell]),
			Crn:         cleanText(cells[crnCell]),
			Instructor:  textContent(cells[instructorCell]),
			Times:       textContent(cells[timesCell]),
			Link:        coursePageLink(cells[courseCell], searchURL),
		})
	}
	return rows, nil
}

// Returns the values of select[name=TERM] in page order (most recent term first)
func parseTerms(reader io.Reader) ([]string, error) {
	document, err := html.Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("cannot parse search page: %w", err)
	}

	selection := findFirst(document, func(node *html.Node) bool {
		return isElement(node, atom.Select) && attribute(node, "name") == "TERM"
	})
	if selection == nil {
		return nil, errors.New("term selector not found")
	}

	options := findAll(selection, func(node *html.Node) bool { return isElement(node, atom.Option) })
	terms := lo.FilterMap(options, func(option *html.Node, _ int) (string, bool) {
		value := strings.TrimSpace(attribute(option, "value"))
		return value, value != ""
	})
	return terms, nil
}

// Returns the corequisite course ids listed in the details table of a course page
func parseCorequisites(reader io.Reader) ([]string, error) {
	document, err := html.Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("cannot parse course page: %w", err)
	}

	table := findFirst(document, func(node *html.Node) bool {
		return isElement(node, atom.Table) && hasClass(node, "datadisplaytable")
	})
	if table == nil {
		return nil, errors.New("course details table not found")
	}
	cell := findFirst(table, func(node *html.Node) bool { return isElement(node, atom.Td) })
	if cell == nil {
		return []string{}, nil
	}

	labels := findAll(cell, func(node *html.Node) bool { return isElement(node, atom.Span) && hasClass(node, "fieldlabeltext") })
	if !lo.SomeBy(labels, func(label *html.Node) bool { return cleanText(label) == "Corequisites:" }) {
		return []string{}, nil
	}

	text := textContent(cell)
	block := corequisiteBlockPattern.FindString(text)
	if block == "" {
		// Corequisites is the last entry of the table
		block = text[strings.Index(text, "Corequisites:"):]
	}

	corequisites := lo.Map(corequisiteIdPattern.FindAllString(block, -1), func(id string, _ int) string {
		return SanitizeCourseId(id)
	})
	return lo.Uniq(corequisites), nil
}

func coursePageLink(cell *html.Node, searchURL string) string {
	anchor := findFirst(cell, func(node *html.Node) bool { return isElement(node, atom.A) })
	if anchor == nil {
		return ""
	}

	for _, key := range []string{"href", "onclick"} {
		value := attribute(anchor, key)
		if match := coursePageLinkPattern.FindStringSubmatch(value); match != nil {
			return searchURL + match[1]
		}
		if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
			return value
		}
	}
	return ""
}

func isElement(node *html.Node, tag atom.Atom) bool {
	return node.Type == html.ElementNode && node.DataAtom == tag
}

func attribute(node *html.Node, key string) string {
	attr, ok := lo.Find(node.Attr, func(attr html.Attribute) bool { return attr.Key == key })
	if !ok {
		return ""
	}
	return attr.Val
}

func hasClass(node *html.Node, class string) bool {
	return lo.Contains(strings.Fields(attribute(node, "class")), class)
}

// Direct element children with the given tag
func children(node *html.Node, tag atom.Atom) []*html.Node {
	result := make([]*html.Node, 0)
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if isElement(child, tag) {
			result = append(result, child)
		}
	}
	return result
}

// Depth-first, document-order search below node (node excluded)
func findAll(node *html.Node, match func(*html.Node) bool) []*html.Node {
	result := make([]*html.Node, 0)
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if match(child) {
			result = append(result, child)
		}
		result = append(result, findAll(child, match)...)
	}
	return result
}

func findFirst(node *html.Node, match func(*html.Node) bool) *html.Node {
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if match(child) {
			return child
		}
		if found := findFirst(child, match); found != nil {
			return found
		}
	}
	return nil
}

func textContent(node *html.Node) string {
	var builder strings.Builder
	var walk func(*html.Node)
	walk = func(current *html.Node) {
		if current.Type == html.TextNode {
			builder.WriteString(current.Data)
		}
		for child := current.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)
	return builder.String()
}

func cleanText(node *html.Node) string {
	return strings.Join(strings.Fields(textContent(node)), " ")
}
