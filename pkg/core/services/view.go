package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/wadjakorntonsri/limestar/pkg/core/domain"
	"github.com/wadjakorntonsri/limestar/pkg/ports"
	"golang.org/x/sync/errgroup"
)

// ViewConfig wires a View
type ViewConfig struct {
	Clock      Clock
	Debounce   time.Duration
	PageSize   int
	Categories bool
	Logger     *slog.Logger
	OnLinks    func(LinkState)
	OnTags     func(TagState)
}

// View owns the browsing state: the search text as typed, its debounced
// value, the selected tags and the current page. It feeds the debounced
// text and the selection into a LinkQuery and keeps a TagQuery alongside.
type View struct {
	api    ports.LinksAPI
	links  *LinkQuery
	tags   *TagQuery
	search *Debouncer[string]
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	raw       string
	debounced string
	selected  *TagSelection
	page      int
	pageSize  int
	closed    bool
}

// NewView builds the queries. ctx bounds fetches started by debounced
// commits; Close cancels it.
func NewView(ctx context.Context, links ports.LinksAPI, tags ports.TagsAPI, cfg ViewConfig) *View {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.PageSize < 1 {
		cfg.PageSize = DefaultPageSize
	}

	vctx, cancel := context.WithCancel(ctx)
	v := &View{
		api:      links,
		logger:   cfg.Logger,
		ctx:      vctx,
		cancel:   cancel,
		selected: NewTagSelection(),
		page:     1,
		pageSize: cfg.PageSize,
	}

	linkOpts := []LinkQueryOption{WithLinkQueryLogger(cfg.Logger)}
	if cfg.OnLinks != nil {
		linkOpts = append(linkOpts, OnLinksChange(cfg.OnLinks))
	}
	v.links = NewLinkQuery(links, domain.LinkFilter{Page: 1, PageSize: cfg.PageSize}, linkOpts...)

	tagOpts := []TagQueryOption{WithCategories(cfg.Categories), WithTagQueryLogger(cfg.Logger)}
	if cfg.OnTags != nil {
		tagOpts = append(tagOpts, OnTagsChange(cfg.OnTags))
	}
	v.tags = NewTagQuery(tags, tagOpts...)

	v.search = NewDebouncer(cfg.Clock, cfg.Debounce, v.commitSearch)
	return v
}

// Start runs the initial link and tag fetches concurrently.
func (v *View) Start(ctx context.Context) error {
	return v.Refresh(ctx)
}

// SetSearch records the text as typed. The link query only sees it once
// input has been quiet for the debounce window.
func (v *View) SetSearch(text string) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.raw = text
	v.mu.Unlock()

	v.search.Push(text)
}

// FlushSearch commits pending search text immediately.
func (v *View) FlushSearch() bool {
	return v.search.Flush()
}

func (v *View) commitSearch(text string) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.debounced = strings.TrimSpace(text)
	v.page = 1
	f := v.filterLocked()
	v.mu.Unlock()

	v.apply(v.ctx, f)
}

// ToggleTag flips a tag in the selection and refetches. It reports whether
// the tag is selected afterwards.
func (v *View) ToggleTag(ctx context.Context, name string) (bool, error) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return false, ErrClosed
	}
	selected := v.selected.Toggle(name)
	v.page = 1
	f := v.filterLocked()
	v.mu.Unlock()

	return selected, v.links.SetFilter(ctx, f)
}

func (v *View) ClearTags(ctx context.Context) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	v.selected.Clear()
	v.page = 1
	f := v.filterLocked()
	v.mu.Unlock()

	return v.links.SetFilter(ctx, f)
}

func (v *View) SetPage(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	v.page = page
	f := v.filterLocked()
	v.mu.Unlock()

	return v.links.SetFilter(ctx, f)
}

func (v *View) filterLocked() domain.LinkFilter {
	return domain.LinkFilter{
		Query:    v.debounced,
		Tags:     v.selected.Names(),
		Page:     v.page,
		PageSize: v.pageSize,
	}
}

func (v *View) apply(ctx context.Context, f domain.LinkFilter) {
	err := v.links.SetFilter(ctx, f)
	if err != nil && !errors.Is(err, ErrClosed) && !errors.Is(err, context.Canceled) {
		v.logger.Warn("search fetch failed", "query", f.Query, "tags", f.Tags, "error", err)
	}
}

// DeleteLink deletes through the link query and refreshes tag counts.
func (v *View) DeleteLink(ctx context.Context, id int64) error {
	if err := v.links.Delete(ctx, id); err != nil {
		return err
	}
	if err := v.tags.Refetch(ctx); err != nil && !errors.Is(err, ErrClosed) {
		v.logger.Warn("refresh tags after delete", "error", err)
	}
	return nil
}

// AddLink validates and creates a link, then refreshes both queries.
func (v *View) AddLink(ctx context.Context, rawURL, note string) (*domain.Link, error) {
	u, err := domain.NormalizeLinkURL(rawURL)
	if err != nil {
		return nil, err
	}
	input := ports.CreateLinkInput{URL: u}
	if n := strings.TrimSpace(note); n != "" {
		input.UserNote = &n
	}

	link, err := v.api.CreateLink(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := v.LinkAdded(ctx); err != nil {
		v.logger.Warn("refresh after add", "error", err)
	}
	return link, nil
}

// LinkAdded refreshes links and tags after a link was created elsewhere.
func (v *View) LinkAdded(ctx context.Context) error {
	return v.Refresh(ctx)
}

// Refresh refetches links and tags concurrently. One failing does not
// cancel the other; the first error is returned.
func (v *View) Refresh(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return v.links.Refetch(ctx) })
	g.Go(func() error { return v.tags.Refetch(ctx) })
	return g.Wait()
}

func (v *View) Links() LinkState { return v.links.State() }

func (v *View) Tags() TagState { return v.tags.State() }

// Categories returns the category tree with empty entries hidden.
func (v *View) Categories() []domain.CategoryWithTags {
	return VisibleCategories(v.tags.State().Categories)
}

func (v *View) SearchText() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.raw
}

func (v *View) DebouncedSearch() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.debounced
}

func (v *View) SelectedTags() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selected.Names()
}

// Close cancels the pending debounce timer and in-flight fetches and stops
// both queries from applying results.
func (v *View) Close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()

	v.search.Stop()
	v.cancel()
	v.links.Close()
	v.tags.Close()
}
