package api

import (
	"context"
	"net/http"

	"github.com/wadjakorntonsri/limestar/pkg/core/domain"
	"github.com/wadjakorntonsri/limestar/pkg/ports"
)

func (c *Client) ListTags(ctx context.Context) ([]domain.TagWithCount, error) {
	var tags []domain.TagWithCount
	if err := c.Request(ctx, "/tags", RequestOptions{}, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]domain.CategoryWithTags, error) {
	var cats []domain.CategoryWithTags
	if err := c.Request(ctx, "/tags/categories", RequestOptions{}, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

func (c *Client) CreateTag(ctx context.Context, input ports.CreateTagInput) (*domain.TagWithCount, error) {
	var tag domain.TagWithCount
	err := c.Request(ctx, "/tags", RequestOptions{
		Method:      http.MethodPost,
		Body:        input,
		RequireAuth: true,
	}, &tag)
	if err != nil {
		return nil, err
	}
	return &tag, nil
}
