package tokens

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"twitch-chat-bot/logging"
)

const refreshMargin = 5 * time.Minute

// AppTokenFetcher запрашивает новый токен приложения.
type AppTokenFetcher func(ctx context.Context) (accessToken string, expiresIn time.Duration, err error)

// AppTokenManager выдаёт действующий токен приложения: из памяти, из
// хранилища или свежий от Twitch.
type AppTokenManager struct {
	store    TokenStore
	getToken AppTokenFetcher
	now      func() time.Time

	mu     sync.Mutex
	cached *Token
}

// NewAppTokenManager создаёт менеджер токенов приложения.
func NewAppTokenManager(store TokenStore, getToken AppTokenFetcher) *AppTokenManager {
	return &AppTokenManager{
		store:    store,
		getToken: getToken,
		now:      time.Now,
	}
}

// Get возвращает токен, обновляя его, если до истечения осталось меньше пяти минут.
func (manager *AppTokenManager) Get(ctx context.Context) (Token, error) {
	if err := ctx.Err(); err != nil {
		return Token{}, err
	}

	manager.mu.Lock()
	defer manager.mu.Unlock()

	if manager.cached != nil && !manager.cached.ExpiresWithin(manager.now(), refreshMargin) {
		return *manager.cached, nil
	}

	token, err := manager.store.LoadAppToken()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Logger.Warn().Err(err).Msg("токены: не удалось прочитать сохранённый токен")
	}
	if token != nil && !token.ExpiresWithin(manager.now(), refreshMargin) {
		manager.cached = token
		return *token, nil
	}

	if err := ctx.Err(); err != nil {
		return Token{}, err
	}

	accessToken, expiresIn, err := manager.getToken(ctx)
	if err != nil {
		return Token{}, err
	}

	fresh := Token{
		Access:    accessToken,
		ExpiresAt: manager.now().Add(expiresIn),
	}
	manager.cached = &fresh

	if err := manager.store.SaveAppToken(fresh); err != nil {
		logging.Logger.Warn().Err(err).Msg("токены: не удалось сохранить токен")
	}

	return fresh, nil
}

// Invalidate забывает текущий токен; следующий Get запросит новый.
// Вызывается, когда Helix отвечает 401.
func (manager *AppTokenManager) Invalidate() {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	manager.cached = nil
	if err := manager.store.SaveAppToken(Token{}); err != nil {
		logging.Logger.Warn().Err(err).Msg("токены: не удалось сбросить токен")
	}
}
