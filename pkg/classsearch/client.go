package classsearch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/limaJavier/classscheduler/pkg/model"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const maxPageSize = 16 << 20

type ClientConfig struct {
	SearchURL         string
	Division          string
	Campus            string
	RequestsPerSecond float64
	RequestBurst      int
	RequestTimeout    time.Duration
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		SearchURL:         "https://class-search.nd.edu/reg/srch/ClassSearchServlet",
		Division:          "A",
		Campus:            "M",
		RequestsPerSecond: 2,
		RequestBurst:      4,
		RequestTimeout:    15 * time.Second,
	}
}

// Client talks to the class-search site. Every request waits on a shared rate limiter
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	recorder   Recorder
	logger     zerolog.Logger
}

func NewClient(config ClientConfig, recorder Recorder, logger zerolog.Logger) *Client {
	return &Client{
		config:     config,
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.RequestBurst),
		recorder:   recorder,
		logger:     logger.With().Str("component", "classsearch").Logger(),
	}
}

// Terms returns the terms offered by the search page, most recent first
func (client *Client) Terms(ctx context.Context) ([]string, error) {
	body, err := client.fetch(ctx, "terms", http.MethodGet, client.config.SearchURL, nil)
	if err != nil {
		return nil, err
	}
	return parseTerms(bytes.NewReader(body))
}

// DepartmentTable returns the result table of the department for the given term. Fails wrapping model.ErrInvalidDepartment
// when the site returns no result table
func (client *Client) DepartmentTable(ctx context.Context, term, department string) ([]Row, error) {
	form := url.Values{
		"TERM":   {term},
		"DIVS":   {client.config.Division},
		"CAMPUS": {client.config.Campus},
		"SUBJ":   {department},
		"ATTR":   {"0ANY"},
		"CREDIT": {"A"},
	}

	body, err := client.fetch(ctx, "department", http.MethodPost, client.config.SearchURL, form)
	if err != nil {
		return nil, err
	}

	rows, err := parseResultTable(bytes.NewReader(body), client.config.SearchURL)
	if err == errMissingResultTable {
		return nil, fmt.Errorf("department %v: %w", department, model.ErrInvalidDepartment)
	} else if err != nil {
		return nil, err
	}

	client.logger.Debug().Str("department", department).Int("rows", len(rows)).Msg("fetched department table")
	return rows, nil
}

// Corequisites returns the course ids listed as corequisites on a course page
func (client *Client) Corequisites(ctx context.Context, link string) ([]string, error) {
	body, err := client.fetch(ctx, "course", http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}
	return parseCorequisites(bytes.NewReader(body))
}

func (client *Client) fetch(ctx context.Context, kind, method, target string, form url.Values) ([]byte, error) {
	if err := client.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, client.config.RequestTimeout)
	defer cancel()

	var payload io.Reader
	if form != nil {
		payload = strings.NewReader(form.Encode())
	}
	request, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		return nil, fmt.Errorf("cannot build request: %w", err)
	}
	if form != nil {
		request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		client.recorder.ObserveRequest(kind, false)
		return nil, fmt.Errorf("class search request failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		client.recorder.ObserveRequest(kind, false)
		return nil, fmt.Errorf("class search returned status %v", response.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, maxPageSize))
	if err != nil {
		client.recorder.ObserveRequest(kind, false)
		return nil, fmt.Errorf("cannot read class search response: %w", err)
	}

	client.recorder.ObserveRequest(kind, true)
	return body, nil
}
