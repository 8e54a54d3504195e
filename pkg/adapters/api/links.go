package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/wadjakorntonsri/limestar/pkg/core/domain"
	"github.com/wadjakorntonsri/limestar/pkg/ports"
)

// ListLinks calls GET /links. Zero-valued params are omitted.
func (c *Client) ListLinks(ctx context.Context, params ports.ListParams) (*domain.LinkPage, error) {
	q := url.Values{}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(params.PageSize))
	}
	if params.Tag != "" {
		q.Set("tag", params.Tag)
	}

	var page domain.LinkPage
	if err := c.Request(ctx, "/links", RequestOptions{Query: q}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetLink(ctx context.Context, id int64) (*domain.Link, error) {
	var link domain.Link
	if err := c.Request(ctx, linkPath(id), RequestOptions{}, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

func (c *Client) CreateLink(ctx context.Context, input ports.CreateLinkInput) (*domain.Link, error) {
	var link domain.Link
	err := c.Request(ctx, "/links", RequestOptions{
		Method:      http.MethodPost,
		Body:        input,
		RequireAuth: true,
	}, &link)
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (c *Client) UpdateLink(ctx context.Context, id int64, input ports.UpdateLinkInput) (*domain.Link, error) {
	var link domain.Link
	err := c.Request(ctx, linkPath(id), RequestOptions{
		Method:      http.MethodPut,
		Body:        input,
		RequireAuth: true,
	}, &link)
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (c *Client) DeleteLink(ctx context.Context, id int64) error {
	return c.Request(ctx, linkPath(id), RequestOptions{
		Method:      http.MethodDelete,
		RequireAuth: true,
	}, nil)
}

// Search calls GET /search. The query is omitted when empty and each tag
// is sent as its own tags parameter.
func (c *Client) Search(ctx context.Context, params ports.SearchParams) (*domain.LinkPage, error) {
	q := url.Values{}
	if params.Query != "" {
		q.Set("q", params.Query)
	}
	for _, tag := range params.Tags {
		q.Add("tags", tag)
	}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(params.PageSize))
	}

	var page domain.LinkPage
	if err := c.Request(ctx, "/search", RequestOptions{Query: q}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func linkPath(id int64) string {
	return fmt.Sprintf("/links/%d", id)
}

var (
	_ ports.LinksAPI = (*Client)(nil)
	_ ports.TagsAPI  = (*Client)(nil)
	_ ports.AuthAPI  = (*Client)(nil)
)
