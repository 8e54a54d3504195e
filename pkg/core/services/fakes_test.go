package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wadjakorntonsri/limestar/pkg/core/domain"
	"github.com/wadjakorntonsri/limestar/pkg/ports"
)

var errBoom = errors.New("boom")

// memTokenStore is an in-memory ports.TokenStore
type memTokenStore struct {
	mu      sync.Mutex
	token   string
	saveErr error
	loadErr error
	clears  int
}

func (s *memTokenStore) LoadToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.loadErr
}

func (s *memTokenStore) SaveToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.token = token
	return nil
}

func (s *memTokenStore) ClearToken(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.clears++
	return nil
}

func (s *memTokenStore) stored() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// fakeAuthAPI accepts one password and issues one token
type fakeAuthAPI struct {
	mu          sync.Mutex
	password    string
	issue       string
	valid       map[string]bool
	loginErr    error
	verifyErr   error
	logoutErr   error
	verifyCalls int
	logouts     []string
}

func (a *fakeAuthAPI) Login(ctx context.Context, password string) (*domain.LoginResponse, error) {
	if a.loginErr != nil {
		return nil, a.loginErr
	}
	if password != a.password {
		return &domain.LoginResponse{Success: false, Message: "wrong password"}, nil
	}
	return &domain.LoginResponse{Success: true, Token: a.issue, Message: "welcome"}, nil
}

func (a *fakeAuthAPI) Verify(ctx context.Context, token string) (*domain.VerifyResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.verifyCalls++
	if a.verifyErr != nil {
		return nil, a.verifyErr
	}
	return &domain.VerifyResponse{Valid: a.valid[token]}, nil
}

func (a *fakeAuthAPI) Logout(ctx context.Context, token string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logouts = append(a.logouts, token)
	return a.logoutErr
}

// fakeLinksAPI serves pages from respond, or from page when respond is nil
type fakeLinksAPI struct {
	mu          sync.Mutex
	page        *domain.LinkPage
	fetchErr    error
	deleteErr   error
	respond     func(kind string, query string) (*domain.LinkPage, error)
	listCalls   []ports.ListParams
	searchCalls []ports.SearchParams
	deleted     []int64
	created     []ports.CreateLinkInput
}

func (f *fakeLinksAPI) serve(kind, query string) (*domain.LinkPage, error) {
	f.mu.Lock()
	respond, page, err := f.respond, f.page, f.fetchErr
	f.mu.Unlock()

	if respond != nil {
		return respond(kind, query)
	}
	if err != nil {
		return nil, err
	}
	if page == nil {
		return &domain.LinkPage{Page: 1, PageSize: DefaultPageSize}, nil
	}
	cp := *page
	cp.Items = append([]domain.Link(nil), page.Items...)
	return &cp, nil
}

func (f *fakeLinksAPI) ListLinks(ctx context.Context, params ports.ListParams) (*domain.LinkPage, error) {
	f.mu.Lock()
	f.listCalls = append(f.listCalls, params)
	f.mu.Unlock()
	return f.serve("list", "")
}

func (f *fakeLinksAPI) Search(ctx context.Context, params ports.SearchParams) (*domain.LinkPage, error) {
	f.mu.Lock()
	f.searchCalls = append(f.searchCalls, params)
	f.mu.Unlock()
	return f.serve("search", params.Query)
}

func (f *fakeLinksAPI) GetLink(ctx context.Context, id int64) (*domain.Link, error) {
	return nil, fmt.Errorf("link %d not found", id)
}

func (f *fakeLinksAPI) CreateLink(ctx context.Context, input ports.CreateLinkInput) (*domain.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, input)
	return &domain.Link{ID: int64(100 + len(f.created)), URL: input.URL}, nil
}

func (f *fakeLinksAPI) UpdateLink(ctx context.Context, id int64, input ports.UpdateLinkInput) (*domain.Link, error) {
	return &domain.Link{ID: id}, nil
}

func (f *fakeLinksAPI) DeleteLink(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func (f *fakeLinksAPI) counts() (list, search int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listCalls), len(f.searchCalls)
}

func (f *fakeLinksAPI) lastSearch() ports.SearchParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.searchCalls) == 0 {
		return ports.SearchParams{}
	}
	return f.searchCalls[len(f.searchCalls)-1]
}

// fakeTagsAPI returns fixed tag data
type fakeTagsAPI struct {
	mu         sync.Mutex
	tags       []domain.TagWithCount
	cats       []domain.CategoryWithTags
	tagsErr    error
	catsErr    error
	tagCalls   int
	catCalls   int
	beforeTags func(ctx context.Context) error
	beforeCats func(ctx context.Context) error
}

func (f *fakeTagsAPI) ListTags(ctx context.Context) ([]domain.TagWithCount, error) {
	f.mu.Lock()
	f.tagCalls++
	hook, tags, err := f.beforeTags, f.tags, f.tagsErr
	f.mu.Unlock()
	if hook != nil {
		if herr := hook(ctx); herr != nil {
			return nil, herr
		}
	}
	if err != nil {
		return nil, err
	}
	return tags, nil
}

func (f *fakeTagsAPI) ListCategories(ctx context.Context) ([]domain.CategoryWithTags, error) {
	f.mu.Lock()
	f.catCalls++
	hook, cats, err := f.beforeCats, f.cats, f.catsErr
	f.mu.Unlock()
	if hook != nil {
		if herr := hook(ctx); herr != nil {
			return nil, herr
		}
	}
	if err != nil {
		return nil, err
	}
	return cats, nil
}

func (f *fakeTagsAPI) CreateTag(ctx context.Context, input ports.CreateTagInput) (*domain.TagWithCount, error) {
	return &domain.TagWithCount{Tag: domain.Tag{ID: 1, Name: input.Name}}, nil
}

func (f *fakeTagsAPI) calls() (tags, cats int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tagCalls, f.catCalls
}

func makePage(total int, ids ...int64) *domain.LinkPage {
	items := make([]domain.Link, len(ids))
	for i, id := range ids {
		items[i] = domain.Link{ID: id, URL: fmt.Sprintf("https://example.com/%d", id)}
	}
	return &domain.LinkPage{
		Items:    items,
		Total:    total,
		Page:     1,
		PageSize: DefaultPageSize,
		HasMore:  domain.HasMore(total, 1, DefaultPageSize),
	}
}

func linkIDs(links []domain.Link) []int64 {
	ids := make([]int64, len(links))
	for i, l := range links {
		ids[i] = l.ID
	}
	return ids
}
