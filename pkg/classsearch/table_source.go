package classsearch

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

type TableSource interface {
	// Returns the rows of the department result table. Fails wrapping model.ErrInvalidDepartment when the department is unknown
	Table(ctx context.Context, department string) ([]Row, error)
}

type clientTableSource struct {
	client *Client
	term   string
}

// NewTableSource fetches every table from the site for a fixed term
func NewTableSource(client *Client, term string) TableSource {
	return &clientTableSource{client: client, term: term}
}

func (source *clientTableSource) Table(ctx context.Context, department string) ([]Row, error) {
	return source.client.DepartmentTable(ctx, source.term, department)
}

// ResolveTerm returns term unchanged when set, otherwise the most recent term offered by the site
func ResolveTerm(ctx context.Context, client *Client, term string) (string, error) {
	if term != "" {
		return term, nil
	}

	terms, err := client.Terms(ctx)
	if err != nil {
		return "", err
	} else if len(terms) == 0 {
		return "", fmt.Errorf("class search offers no term")
	}
	return terms[0], nil
}

type cachedTableSource struct {
	inner    TableSource
	store    TableStore
	group    singleflight.Group
	recorder Recorder
	logger   zerolog.Logger
}

// NewCachedTableSource serves tables from store and fills it from inner on a miss. Concurrent misses for the same
// department share one fetch, which outlives any single caller. Failed fetches are not stored
func NewCachedTableSource(inner TableSource, store TableStore, recorder Recorder, logger zerolog.Logger) TableSource {
	return &cachedTableSource{
		inner:    inner,
		store:    store,
		recorder: recorder,
		logger:   logger.With().Str("component", "table_cache").Logger(),
	}
}

func (source *cachedTableSource) Table(ctx context.Context, department string) ([]Row, error) {
	if rows, ok := source.store.Get(ctx, department); ok {
		source.recorder.ObserveTableLookup(true)
		source.logger.Debug().Str("department", department).Msg("table cache hit")
		return rows, nil
	}
	source.recorder.ObserveTableLookup(false)
	source.logger.Debug().Str("department", department).Msg("table cache miss")

	// The fetch is shared and outlives the caller that started it
	shared := context.WithoutCancel(ctx)
	results := source.group.DoChan(department, func() (any, error) {
		rows, err := source.inner.Table(shared, department)
		if err != nil {
			return nil, err
		}
		source.store.Set(shared, department, rows)
		return rows, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-results:
		if result.Err != nil {
			return nil, result.Err
		}
		return result.Val.([]Row), nil
	}
}
