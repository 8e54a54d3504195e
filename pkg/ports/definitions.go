package ports

import (
	"context"

	"github.com/wadjakorntonsri/limestar/pkg/core/domain"
)

// TokenStore persists the session token in durable client storage.
// LoadToken returns "" when no token is stored.
type TokenStore interface {
	LoadToken(ctx context.Context) (string, error)
	SaveToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// AuthAPI is the server side of the admin session
type AuthAPI interface {
	Login(ctx context.Context, password string) (*domain.LoginResponse, error)
	Verify(ctx context.Context, token string) (*domain.VerifyResponse, error)
	Logout(ctx context.Context, token string) error
}

// ListParams selects a page of the unfiltered listing
type ListParams struct {
	Page     int
	PageSize int
	Tag      string
}

// SearchParams selects a page of search results
type SearchParams struct {
	Query    string
	Tags     []string
	Page     int
	PageSize int
}

// CreateLinkInput is the body of POST /links
type CreateLinkInput struct {
	URL      string  `json:"url"`
	UserNote *string `json:"user_note,omitempty"`
}

// UpdateLinkInput is the body of PUT /links/:id. Nil fields are left as-is.
type UpdateLinkInput struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	UserNote    *string `json:"user_note,omitempty"`
	TagIDs      []int64 `json:"tag_ids,omitempty"`
}

// LinksAPI defines the link and search endpoints
type LinksAPI interface {
	ListLinks(ctx context.Context, params ListParams) (*domain.LinkPage, error)
	Search(ctx context.Context, params SearchParams) (*domain.LinkPage, error)
	GetLink(ctx context.Context, id int64) (*domain.Link, error)
	CreateLink(ctx context.Context, input CreateLinkInput) (*domain.Link, error)
	UpdateLink(ctx context.Context, id int64, input UpdateLinkInput) (*domain.Link, error)
	DeleteLink(ctx context.Context, id int64) error
}

// CreateTagInput is the body of POST /tags
type CreateTagInput struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// TagsAPI defines the tag vocabulary endpoints
type TagsAPI interface {
	ListTags(ctx context.Context) ([]domain.TagWithCount, error)
	ListCategories(ctx context.Context) ([]domain.CategoryWithTags, error)
	CreateTag(ctx context.Context, input CreateTagInput) (*domain.TagWithCount, error)
}
