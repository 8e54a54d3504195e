package api

import (
	"context"
	"net/http"

	"github.com/wadjakorntonsri/limestar/pkg/core/domain"
)

type passwordBody struct {
	Password string `json:"password"`
}

type tokenBody struct {
	Token string `json:"token"`
}

func (c *Client) Login(ctx context.Context, password string) (*domain.LoginResponse, error) {
	var resp domain.LoginResponse
	err := c.Request(ctx, "/auth/login", RequestOptions{
		Method: http.MethodPost,
		Body:   passwordBody{Password: password},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Verify(ctx context.Context, token string) (*domain.VerifyResponse, error) {
	var resp domain.VerifyResponse
	err := c.Request(ctx, "/auth/verify", RequestOptions{
		Method: http.MethodPost,
		Body:   tokenBody{Token: token},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.Request(ctx, "/auth/logout", RequestOptions{
		Method: http.MethodPost,
		Body:   tokenBody{Token: token},
	}, nil)
}
