package domain

import (
	"errors"
	"net/url"
	"strings"
)

var (
	ErrEmptyURL   = errors.New("url is required")
	ErrInvalidURL = errors.New("url is not valid")
)

// Link represents a bookmarked URL as returned by the LimeStar API
type Link struct {
	ID          int64     `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	UserNote    *string   `json:"user_note"`
	FaviconURL  *string   `json:"favicon_url"`
	OGImageURL  *string   `json:"og_image_url"`
	Domain      string    `json:"domain"`
	CreatedAt   Timestamp `json:"created_at"`
	UpdatedAt   Timestamp `json:"updated_at"`
	IsProcessed bool      `json:"is_processed"`
	Tags        []Tag     `json:"tags"`
}

// HasTag reports whether the link carries a tag with the given name
func (l Link) HasTag(name string) bool {
	for _, t := range l.Tags {
		if t.Name == name {
			return true
		}
	}
	return false
}

// LinkPage is one page of a paginated link listing
type LinkPage struct {
	Items    []Link `json:"items"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	HasMore  bool   `json:"has_more"`
}

// Consistent checks the page against its own counters.
func (p LinkPage) Consistent() bool {
	if p.PageSize > 0 && len(p.Items) > p.PageSize {
		return false
	}
	if p.Total < 0 {
		return false
	}
	return p.HasMore == HasMore(p.Total, p.Page, p.PageSize)
}

// Without returns a copy of the page with the link removed and the total
// decremented. The second result is false when the link was not on the page.
func (p LinkPage) Without(id int64) (LinkPage, bool) {
	idx := -1
	for i, l := range p.Items {
		if l.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return p, false
	}

	items := make([]Link, 0, len(p.Items)-1)
	items = append(items, p.Items[:idx]...)
	items = append(items, p.Items[idx+1:]...)
	p.Items = items
	if p.Total > 0 {
		p.Total--
	}
	return p, true
}

// HasMore reports whether pages exist beyond the given one.
func HasMore(total, page, pageSize int) bool {
	if page < 1 || pageSize < 1 {
		return false
	}
	return page*pageSize < total
}

// LinkFilter selects which links a query fetches
type LinkFilter struct {
	Query    string
	Tags     []string
	Page     int
	PageSize int
}

// IsActive reports whether the filter needs the search endpoint.
func (f LinkFilter) IsActive() bool {
	return f.Query != "" || len(f.Tags) > 0
}

// Equal compares filters element-wise. Tag order matters; callers keep
// tag lists sorted.
func (f LinkFilter) Equal(o LinkFilter) bool {
	if f.Query != o.Query || f.Page != o.Page || f.PageSize != o.PageSize {
		return false
	}
	if len(f.Tags) != len(o.Tags) {
		return false
	}
	for i := range f.Tags {
		if f.Tags[i] != o.Tags[i] {
			return false
		}
	}
	return true
}

// NormalizeLinkURL trims the input and prefixes https:// when no http(s)
// scheme is given.
func NormalizeLinkURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyURL
	}
	if !strings.HasPrefix(raw, "http") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", ErrInvalidURL
	}
	return raw, nil
}
