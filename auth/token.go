package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultTokenURL — эндпоинт client credentials flow Twitch.
const DefaultTokenURL = "https://id.twitch.tv/oauth2/token"

// ErrEmptyToken возвращается, если Twitch ответил без access_token.
var ErrEmptyToken = errors.New("twitch oauth: empty access token")

// AppCredentials запрашивает OAuth токены приложения у Twitch.
type AppCredentials struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	HTTPClient   *http.Client
	MaxRetries   uint64
}

// GetAppToken запрашивает токен приложения, повторяя запрос при сетевых
// ошибках и ответах 5xx.
func (c AppCredentials) GetAppToken(ctx context.Context) (accessToken string, expiresIn time.Duration, err error) {
	op := func() error {
		accessToken, expiresIn, err = c.requestToken(ctx)
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.MaxRetries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return "", 0, err
	}
	return accessToken, expiresIn, nil
}

func (c AppCredentials) requestToken(ctx context.Context) (string, time.Duration, error) {
	form := url.Values{}
	form.Set("client_id", strings.TrimSpace(c.ClientID))
	form.Set("client_secret", strings.TrimSpace(c.ClientSecret))
	form.Set("grant_type", "client_credentials")

	tokenURL := c.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, backoff.Permanent(fmt.Errorf("twitch oauth: create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("twitch oauth: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		statusErr := fmt.Errorf("twitch oauth: unexpected status %s: %s", resp.Status, strings.TrimSpace(string(body)))
		if resp.StatusCode < http.StatusInternalServerError {
			return "", 0, backoff.Permanent(statusErr)
		}
		return "", 0, statusErr
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", 0, backoff.Permanent(fmt.Errorf("twitch oauth: decode response: %w", err))
	}
	if payload.AccessToken == "" {
		return "", 0, backoff.Permanent(ErrEmptyToken)
	}

	return payload.AccessToken, time.Duration(payload.ExpiresIn) * time.Second, nil
}
