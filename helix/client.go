// Package helix — минимальный клиент Twitch Helix API: трансляции и эмоуты.
package helix

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

	"twitch-chat-bot/model"
	"twitch-chat-bot/tokens"
)

// DefaultBaseURL — корень Helix API.
const DefaultBaseURL = "https://api.twitch.tv/helix"

var errUnauthorized = errors.New("helix: unauthorized")

// TokenSource выдаёт токен приложения и позволяет сбросить его после 401.
type TokenSource interface {
	Get(ctx context.Context) (tokens.Token, error)
	Invalidate()
}

// Client выполняет запросы к Helix от имени приложения.
type Client struct {
	baseURL  string
	clientID string
	tokens   TokenSource
	http     *http.Client
}

// NewClient создаёт клиента; пустой baseURL означает DefaultBaseURL.
func NewClient(baseURL, clientID string, ts TokenSource, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		clientID: clientID,
		tokens:   ts,
		http:     httpClient,
	}
}

type streamsResponse struct {
	Data []struct {
		UserLogin string    `json:"user_login"`
		Title     string    `json:"title"`
		StartedAt time.Time `json:"started_at"`
	} `json:"data"`
}

// Stream возвращает активную трансляцию канала или model.ErrNotFound, если канал офлайн.
func (c *Client) Stream(ctx context.Context, login string) (*model.Stream, error) {
	var resp streamsResponse
	if err := c.get(ctx, "/streams", url.Values{"user_login": {login}}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, model.ErrNotFound
	}

	s := resp.Data[0]
	return &model.Stream{UserLogin: s.UserLogin, Title: s.Title, StartedAt: s.StartedAt}, nil
}

type usersResponse struct {
	Data []struct {
		ID    string `json:"id"`
		Login string `json:"login"`
	} `json:"data"`
}

type emotesResponse struct {
	Data []struct {
		Name string `json:"name"`
	} `json:"data"`
}

// Emotes возвращает имена эмоутов канала вместе с глобальными эмоутами Twitch.
func (c *Client) Emotes(ctx context.Context, login string) ([]string, error) {
	var users usersResponse
	if err := c.get(ctx, "/users", url.Values{"login": {login}}, &users); err != nil {
		return nil, err
	}
	if len(users.Data) == 0 {
		return nil, fmt.Errorf("helix: user %s: %w", login, model.ErrNotFound)
	}

	var channel, global emotesResponse
	if err := c.get(ctx, "/chat/emotes", url.Values{"broadcaster_id": {users.Data[0].ID}}, &channel); err != nil {
		return nil, err
	}
	if err := c.get(ctx, "/chat/emotes/global", nil, &global); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(channel.Data)+len(global.Data))
	names := make([]string, 0, len(channel.Data)+len(global.Data))
	for _, e := range append(channel.Data, global.Data...) {
		if _, dup := seen[e.Name]; dup || e.Name == "" {
			continue
		}
		seen[e.Name] = struct{}{}
		names = append(names, e.Name)
	}
	return names, nil
}

// get выполняет GET и декодирует JSON; при 401 сбрасывает токен и повторяет один раз.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	err := c.doGet(ctx, path, query, out)
	if errors.Is(err, errUnauthorized) {
		c.tokens.Invalidate()
		err = c.doGet(ctx, path, query, out)
	}
	return err
}

func (c *Client) doGet(ctx context.Context, path string, query url.Values, out any) error {
	token, err := c.tokens.Get(ctx)
	if err != nil {
		return fmt.Errorf("helix: app token: %w", err)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("helix: create request: %w", err)
	}
	req.Header.Set("Client-Id", c.clientID)
	req.Header.Set("Authorization", "Bearer "+token.Access)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("helix: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return errUnauthorized
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("helix: GET %s: unexpected status %s: %s", path, resp.Status, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("helix: GET %s: decode response: %w", path, err)
	}
	return nil
}
