package services

import (
	"context"
	"log/slog"
	"sync"

	"github.com/wadjakorntonsri/limestar/pkg/core/domain"
	"github.com/wadjakorntonsri/limestar/pkg/ports"
	"golang.org/x/sync/errgroup"
)

// TagState is a snapshot of a TagQuery
type TagState struct {
	Status     Status
	Tags       []domain.TagWithCount
	Categories []domain.CategoryWithTags
	IsLoading  bool
	Err        error
}

// TagQuery holds the tag vocabulary. It has no mutations of its own:
// callers refetch after anything that may change counts.
type TagQuery struct {
	api        ports.TagsAPI
	categories bool
	logger     *slog.Logger

	mu       sync.Mutex
	tags     []domain.TagWithCount
	cats     []domain.CategoryWithTags
	status   Status
	err      error
	seq      fetchSeq
	closed   bool
	onChange func(TagState)
}

type TagQueryOption func(*TagQuery)

// WithCategories also fetches the category tree alongside the flat list.
func WithCategories(enabled bool) TagQueryOption {
	return func(q *TagQuery) { q.categories = enabled }
}

func WithTagQueryLogger(l *slog.Logger) TagQueryOption {
	return func(q *TagQuery) { q.logger = l }
}

func OnTagsChange(fn func(TagState)) TagQueryOption {
	return func(q *TagQuery) { q.onChange = fn }
}

func NewTagQuery(api ports.TagsAPI, opts ...TagQueryOption) *TagQuery {
	q := &TagQuery{api: api, categories: true, logger: slog.Default()}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Refetch loads the flat list and, when enabled, the category tree
// concurrently. Nothing is applied unless both succeed.
func (q *TagQuery) Refetch(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	seq := q.seq.next()
	q.status = StatusLoading
	state := q.stateLocked()
	q.mu.Unlock()
	q.notify(state)

	var (
		tags []domain.TagWithCount
		cats []domain.CategoryWithTags
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tags, err = q.api.ListTags(gctx)
		return err
	})
	if q.categories {
		g.Go(func() error {
			var err error
			cats, err = q.api.ListCategories(gctx)
			return err
		})
	}
	err := g.Wait()

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	if !q.seq.latest(seq) {
		q.mu.Unlock()
		q.logger.Debug("discarding superseded tag fetch", "seq", seq)
		return err
	}

	q.seq.resolve()
	if err != nil {
		q.status = StatusError
		q.err = err
	} else {
		q.status = StatusReady
		q.err = nil
		q.tags = tags
		q.cats = cats
	}
	state = q.stateLocked()
	q.mu.Unlock()
	q.notify(state)

	return err
}

func (q *TagQuery) State() TagState {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stateLocked()
}

func (q *TagQuery) stateLocked() TagState {
	return TagState{
		Status:     q.status,
		Tags:       append([]domain.TagWithCount(nil), q.tags...),
		Categories: append([]domain.CategoryWithTags(nil), q.cats...),
		IsLoading:  q.seq.initialLoading(),
		Err:        q.err,
	}
}

func (q *TagQuery) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}

func (q *TagQuery) notify(s TagState) {
	if q.onChange != nil {
		q.onChange(s)
	}
}

// VisibleCategories drops categories without links and, inside the rest,
// child tags without links.
func VisibleCategories(cats []domain.CategoryWithTags) []domain.CategoryWithTags {
	var out []domain.CategoryWithTags
	for _, c := range cats {
		if c.Count <= 0 {
			continue
		}
		var children []domain.TagWithCount
		for _, t := range c.Tags {
			if t.Count > 0 {
				children = append(children, t)
			}
		}
		c.Tags = children
		out = append(out, c)
	}
	return out
}

// VisibleTags drops tags without links.
func VisibleTags(tags []domain.TagWithCount) []domain.TagWithCount {
	var out []domain.TagWithCount
	for _, t := range tags {
		if t.Count > 0 {
			out = append(out, t)
		}
	}
	return out
}
