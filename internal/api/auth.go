package api

import (
	"context"
	"errors"
	"fmt"
)

// loginRequest is the body sent to POST /auth/login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token. Invalid credentials
// surface as an AuthError.
func (c *Client) Login(
	ctx context.Context,
	email string,
	password string,
) (string, error) {
	var envelope loginEnvelope
	body := loginRequest{Email: email, Password: password}

	if err := c.Post(ctx, "/auth/login", body, &envelope); err != nil {
		return "", fmt.Errorf("logging in: %w", err)
	}

	if envelope.Data == nil || envelope.Data.Token == "" {
		return "", &DecodeError{
			Op:  "POST /auth/login",
			Err: errors.New("response carries no token"),
		}
	}

	return envelope.Data.Token, nil
}
