package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"twitch-chat-bot/logging"
	"twitch-chat-bot/model"
)

const schema = `
create table if not exists channel_state (
  channel    text primary key,
  state      jsonb not null,
  updated_at timestamptz not null default now()
);

create table if not exists command_log (
  message_id text primary key,
  channel    text not null,
  user_id    text,
  username   text,
  trigger    text not null,
  args       text,
  reply      text,
  handled_at timestamptz not null
);`

// StateConfig задаёт таймауты и повторы при сохранении состояния каналов.
type StateConfig struct {
	Timeout      time.Duration
	MaxRetries   uint64
	RetryInitial time.Duration
	SlotsEmotes  int
}

type dbConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// StateStore хранит состояние каждого канала одной JSONB-строкой.
type StateStore struct {
	db     dbConn
	config StateConfig
}

// NewStateStore создаёт хранилище поверх пула pgx (или любого совместимого соединения).
func NewStateStore(db dbConn, cfg StateConfig) *StateStore {
	return &StateStore{db: db, config: cfg}
}

// EnsureSchema создаёт таблицы, если их ещё нет.
func (s *StateStore) EnsureSchema(ctx context.Context) error {
	dbCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	if _, err := s.db.Exec(dbCtx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Load читает состояние канала; для нового канала возвращает пустое состояние.
func (s *StateStore) Load(ctx context.Context, channel string) (*model.ChannelState, error) {
	dbCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	var raw []byte
	err := s.db.QueryRow(dbCtx, `select state from channel_state where channel = $1`, channel).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.NewChannelState(s.config.SlotsEmotes), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load state %s: query: %w", channel, err)
	}

	state := model.NewChannelState(s.config.SlotsEmotes)
	if err := json.Unmarshal(raw, state); err != nil {
		return nil, fmt.Errorf("load state %s: decode json: %w", channel, err)
	}

	if state.Commands == nil {
		state.Commands = []model.CustomCommand{}
	}
	if state.Quotes == nil {
		state.Quotes = []model.Quote{}
	}
	if state.Settings.SlotsEmotes < 1 {
		state.Settings.SlotsEmotes = s.config.SlotsEmotes
	}

	return state, nil
}

// Save записывает состояние канала целиком, повторяя попытку с
// экспоненциальной задержкой.
func (s *StateStore) Save(ctx context.Context, channel string, state *model.ChannelState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("save state %s: encode json: %w", channel, err)
	}

	const q = `
insert into channel_state (channel, state, updated_at)
values ($1, $2, now())
on conflict (channel) do update set state = excluded.state, updated_at = excluded.updated_at;`

	attempt := 0
	op := func() error {
		attempt++
		dbCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()

		_, err := s.db.Exec(dbCtx, q, channel, payload)
		if err != nil {
			logging.Logger.Warn().Err(err).Str("channel", channel).Int("attempt", attempt).Msg("хранилище: не удалось сохранить состояние")
		}
		return err
	}

	b := backoff.NewExponentialBackOff()
	if s.config.RetryInitial > 0 {
		b.InitialInterval = s.config.RetryInitial
	}

	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, s.config.MaxRetries), ctx)); err != nil {
		return fmt.Errorf("save state %s: %w", channel, err)
	}
	return nil
}
