package services

import (
	"context"
	"log/slog"
	"sync"

	"github.com/wadjakorntonsri/limestar/pkg/core/domain"
	"github.com/wadjakorntonsri/limestar/pkg/ports"
)

// DefaultPageSize matches the server default.
const DefaultPageSize = 20

// LinkState is a snapshot of a LinkQuery
type LinkState struct {
	Status  Status
	Filter  domain.LinkFilter
	Links   []domain.Link
	Total   int
	HasMore bool
	// IsLoading is only set during the first fetch of the query's life.
	// Later refetches keep showing the previous page until data arrives.
	IsLoading bool
	Err       error
}

// LinkQuery keeps one page of links for a filter. A non-empty search text or
// any selected tag routes to the search endpoint, otherwise the plain
// listing is used.
type LinkQuery struct {
	api    ports.LinksAPI
	logger *slog.Logger

	mu       sync.Mutex
	filter   domain.LinkFilter
	page     *domain.LinkPage
	status   Status
	err      error
	seq      fetchSeq
	deleted  map[int64]uint64 // link id -> last fetch issued before the delete landed
	closed   bool
	onChange func(LinkState)
}

type LinkQueryOption func(*LinkQuery)

func WithLinkQueryLogger(l *slog.Logger) LinkQueryOption {
	return func(q *LinkQuery) { q.logger = l }
}

// OnLinksChange registers a callback run after every state change. It is
// called without the query lock held.
func OnLinksChange(fn func(LinkState)) LinkQueryOption {
	return func(q *LinkQuery) { q.onChange = fn }
}

func NewLinkQuery(api ports.LinksAPI, filter domain.LinkFilter, opts ...LinkQueryOption) *LinkQuery {
	q := &LinkQuery{
		api:     api,
		logger:  slog.Default(),
		filter:  normalizeFilter(filter),
		deleted: make(map[int64]uint64),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func normalizeFilter(f domain.LinkFilter) domain.LinkFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if len(f.Tags) == 0 {
		f.Tags = nil
	} else {
		f.Tags = append([]string(nil), f.Tags...)
	}
	return f
}

// SetFilter replaces the filter and refetches if it changed.
func (q *LinkQuery) SetFilter(ctx context.Context, f domain.LinkFilter) error {
	f = normalizeFilter(f)

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	if q.filter.Equal(f) && q.status != StatusIdle {
		q.mu.Unlock()
		return nil
	}
	q.filter = f
	q.mu.Unlock()

	return q.Refetch(ctx)
}

// Refetch fetches the current filter. Only the most recently issued fetch
// is applied; results of superseded fetches are dropped.
func (q *LinkQuery) Refetch(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	seq := q.seq.next()
	filter := q.filter
	q.status = StatusLoading
	state := q.stateLocked()
	q.mu.Unlock()
	q.notify(state)

	page, err := q.fetch(ctx, filter)

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	if !q.seq.latest(seq) {
		q.mu.Unlock()
		q.logger.Debug("discarding superseded link fetch", "seq", seq)
		return err
	}

	q.seq.resolve()
	if err != nil {
		q.status = StatusError
		q.err = err
	} else {
		q.status = StatusReady
		q.err = nil
		q.page = q.applyTombstones(page, seq)
		if !q.page.Consistent() {
			q.logger.Warn("inconsistent link page",
				"total", q.page.Total, "page", q.page.Page, "page_size", q.page.PageSize,
				"items", len(q.page.Items), "has_more", q.page.HasMore)
		}
	}
	state = q.stateLocked()
	q.mu.Unlock()
	q.notify(state)

	return err
}

func (q *LinkQuery) fetch(ctx context.Context, f domain.LinkFilter) (*domain.LinkPage, error) {
	if f.IsActive() {
		return q.api.Search(ctx, ports.SearchParams{
			Query:    f.Query,
			Tags:     f.Tags,
			Page:     f.Page,
			PageSize: f.PageSize,
		})
	}
	return q.api.ListLinks(ctx, ports.ListParams{
		Page:     f.Page,
		PageSize: f.PageSize,
	})
}

// applyTombstones drops links deleted after fetch seq was issued, since the
// server may have answered before the delete took effect. Tombstones older
// than seq are no longer needed.
func (q *LinkQuery) applyTombstones(page *domain.LinkPage, seq uint64) *domain.LinkPage {
	p := *page
	for id, before := range q.deleted {
		if before < seq {
			delete(q.deleted, id)
			continue
		}
		p, _ = p.Without(id)
	}
	return &p
}

// Delete removes a link on the server. On success the held page is patched
// in place (entry removed, total decremented) without a refetch; has_more
// stays as it was. On failure the error is recorded and a refetch brings
// the page back in line with the server.
func (q *LinkQuery) Delete(ctx context.Context, id int64) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.mu.Unlock()

	if err := q.api.DeleteLink(ctx, id); err != nil {
		q.logger.Warn("delete link failed, refetching", "id", id, "error", err)

		q.mu.Lock()
		q.err = err
		q.status = StatusError
		state := q.stateLocked()
		q.mu.Unlock()
		q.notify(state)

		if rerr := q.Refetch(ctx); rerr != nil && rerr != ErrClosed {
			q.logger.Warn("refetch after failed delete", "error", rerr)
		}
		return err
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	// Patch whatever page is current now, not the one seen when the delete
	// started.
	if q.page != nil {
		if patched, ok := q.page.Without(id); ok {
			q.page = &patched
		}
	}
	if q.seq.issued > 0 {
		q.deleted[id] = q.seq.issued
	}
	state := q.stateLocked()
	q.mu.Unlock()
	q.notify(state)

	return nil
}

// State returns a snapshot. Slices are copies.
func (q *LinkQuery) State() LinkState {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stateLocked()
}

func (q *LinkQuery) stateLocked() LinkState {
	s := LinkState{
		Status:    q.status,
		Filter:    q.filter,
		IsLoading: q.seq.initialLoading(),
		Err:       q.err,
	}
	s.Filter.Tags = append([]string(nil), q.filter.Tags...)
	if q.page != nil {
		s.Links = append([]domain.Link(nil), q.page.Items...)
		s.Total = q.page.Total
		s.HasMore = q.page.HasMore
	}
	return s
}

// Close stops the query from applying any further results.
func (q *LinkQuery) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}

func (q *LinkQuery) notify(s LinkState) {
	if q.onChange != nil {
		q.onChange(s)
	}
}
