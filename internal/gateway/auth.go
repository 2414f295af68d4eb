package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/desertthunder/mvx/internal/models"
	"golang.org/x/oauth2"
)

// Token is the credential pair issued by the backend's login endpoint.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges credentials for a bearer token.
//
// The login endpoint is an OAuth-style token endpoint with a fixed
// form-urlencoded credential encoding (username/password fields) independent
// of the JSON convention used everywhere else. The password grant flow from
// [oauth2] matches that contract exactly.
func (c *Client) Login(ctx context.Context, email, password string) (*Token, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, newError(KindValidation, 0, "email and password are required", nil)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	tok, err := c.auth.PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			status := retrieveErr.Response.StatusCode
			message := extractMessage(retrieveErr.Body, status)
			kind := KindHTTP
			if status == http.StatusBadRequest || status == http.StatusUnauthorized || status == http.StatusForbidden {
				kind = KindUnauthorized
			}
			return nil, newError(kind, status, message, err)
		}
		return nil, newError(KindNetwork, 0, "login request failed", err)
	}

	return &Token{AccessToken: tok.AccessToken, TokenType: tok.TokenType}, nil
}

// Register creates a new account with a JSON body.
//
// The password confirmation check happens here, before any network call.
func (c *Client) Register(ctx context.Context, username, email, password, confirm string) (*models.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, newError(KindValidation, 0, "username is required", nil)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, newError(KindValidation, 0, "a valid email address is required", err)
	}
	if password == "" {
		return nil, newError(KindValidation, 0, "password is required", nil)
	}
	if password != confirm {
		return nil, newError(KindValidation, 0, "passwords do not match", nil)
	}

	body := map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}

	var user models.User
	if err := c.call(ctx, http.MethodPost, "/auth/register", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CurrentUser resolves the identity behind the currently held token.
//
// Returns (nil, nil) when no token is held: "not logged in" is a valid state,
// not a failure.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	if c.tokens == nil {
		return nil, nil
	}
	if _, ok := c.tokens.Token(); !ok {
		return nil, nil
	}

	var user models.User
	if err := c.call(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
