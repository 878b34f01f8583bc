// Package speedrun читает игры, категории и таблицы лидеров speedrun.com (API v1).
package speedrun

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"twitch-chat-bot/model"
)

// DefaultBaseURL — корень публичного API speedrun.com.
const DefaultBaseURL = "https://www.speedrun.com/api/v1"

// Client — клиент только для чтения; API speedrun.com не требует авторизации.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient создаёт клиента; пустой baseURL означает DefaultBaseURL.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

type names struct {
	International string `json:"international"`
}

// Game ищет игру по сокращению (handle), например "sm64".
func (c *Client) Game(ctx context.Context, handle string) (*model.Game, error) {
	var resp struct {
		Data []struct {
			ID    string `json:"id"`
			Names names  `json:"names"`
		} `json:"data"`
	}
	if err := c.get(ctx, "/games", url.Values{"abbreviation": {handle}}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, model.ErrNotFound
	}
	return &model.Game{ID: resp.Data[0].ID, Name: resp.Data[0].Names.International}, nil
}

// Categories возвращает полноигровые категории игры.
func (c *Client) Categories(ctx context.Context, game model.Game) ([]model.Category, error) {
	var resp struct {
		Data []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"data"`
	}
	if err := c.get(ctx, "/games/"+url.PathEscape(game.ID)+"/categories", nil, &resp); err != nil {
		return nil, err
	}

	out := make([]model.Category, 0, len(resp.Data))
	for _, cat := range resp.Data {
		if cat.Type != "" && cat.Type != "per-game" {
			continue
		}
		out = append(out, model.Category{ID: cat.ID, Name: cat.Name})
	}
	return out, nil
}

type leaderboardResponse struct {
	Data struct {
		Runs []struct {
			Place int `json:"place"`
			Run   struct {
				Times struct {
					PrimaryT float64 `json:"primary_t"`
				} `json:"times"`
				Videos *struct {
					Links []struct {
						URI string `json:"uri"`
					} `json:"links"`
				} `json:"videos"`
				Players []playerRef `json:"players"`
			} `json:"run"`
		} `json:"runs"`
		Players struct {
			Data []embeddedPlayer `json:"data"`
		} `json:"players"`
	} `json:"data"`
}

type playerRef struct {
	Rel  string `json:"rel"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

type embeddedPlayer struct {
	Rel   string `json:"rel"`
	ID    string `json:"id"`
	Name  string `json:"name"`
	Names names  `json:"names"`
}

// LeaderboardPlace возвращает все забеги, занимающие place в категории.
// Несколько забегов означают ничью; пустой результат — места нет.
func (c *Client) LeaderboardPlace(ctx context.Context, game model.Game, category model.Category, place int) ([]model.Run, error) {
	path := "/leaderboards/" + url.PathEscape(game.ID) + "/category/" + url.PathEscape(category.ID)
	query := url.Values{"top": {strconv.Itoa(place)}, "embed": {"players"}}

	var resp leaderboardResponse
	if err := c.get(ctx, path, query, &resp); err != nil {
		return nil, err
	}

	userNames := make(map[string]string, len(resp.Data.Players.Data))
	for _, p := range resp.Data.Players.Data {
		if p.Rel == "user" {
			userNames[p.ID] = p.Names.International
		}
	}

	var runs []model.Run
	for _, entry := range resp.Data.Runs {
		if entry.Place != place {
			continue
		}

		run := model.Run{
			Place: entry.Place,
			Time:  secondsToDuration(entry.Run.Times.PrimaryT),
		}
		if len(entry.Run.Players) > 0 {
			run.Player = playerName(entry.Run.Players[0], userNames)
		}
		if v := entry.Run.Videos; v != nil && len(v.Links) > 0 {
			run.VideoLink = v.Links[0].URI
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func playerName(ref playerRef, userNames map[string]string) string {
	if ref.Rel == "guest" {
		return ref.Name
	}
	if name, ok := userNames[ref.ID]; ok {
		return name
	}
	return ref.ID
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(math.Round(seconds*1000)) * time.Millisecond
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("speedrun: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("speedrun: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return model.ErrNotFound
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("speedrun: GET %s: unexpected status %s: %s", path, resp.Status, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("speedrun: GET %s: decode response: %w", path, err)
	}
	return nil
}
