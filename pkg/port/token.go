package port

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// ErrEmptyAccessToken is returned when the token endpoint responds without a token.
var ErrEmptyAccessToken = errors.New("access token is empty")

type tokenRequest struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int64  `json:"expiresIn"`
	TokenType   string `json:"tokenType"`
}

// tokenSource exchanges a client id and secret for an access token.
type tokenSource struct {
	ctx          context.Context //nolint:containedctx
	httpClient   *http.Client
	tokenURL     string
	clientID     string
	clientSecret string
}

func (ts *tokenSource) Token() (*oauth2.Token, error) {
	b, err := json.Marshal(&tokenRequest{
		ClientID:     ts.clientID,
		ClientSecret: ts.clientSecret,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal a token request as JSON: %w", err)
	}
	req, err := http.NewRequestWithContext(ts.ctx, http.MethodPost, ts.tokenURL, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("create a token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := ts.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send a token request: %w", err)
	}
	defer resp.Body.Close()
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	body := &tokenResponse{}
	if err := json.NewDecoder(resp.Body).Decode(body); err != nil {
		return nil, fmt.Errorf("decode a token response as JSON: %w", err)
	}
	if body.AccessToken == "" {
		return nil, ErrEmptyAccessToken
	}
	token := &oauth2.Token{
		AccessToken: body.AccessToken,
		TokenType:   "Bearer",
	}
	if body.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(time.Duration(body.ExpiresIn) * time.Second)
	}
	return token, nil
}
