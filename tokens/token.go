package tokens

import (
	"os"
	"sync"
	"time"
)

// Token — OAuth токен приложения Twitch, которым подписываются запросы к Helix.
type Token struct {
	Access    string
	ExpiresAt time.Time
}

// ExpiresWithin сообщает, истечёт ли токен в течение margin от now.
func (t Token) ExpiresWithin(now time.Time, margin time.Duration) bool {
	return t.Access == "" || t.ExpiresAt.Before(now.Add(margin))
}

// TokenStore хранит токен между перезапусками бота.
type TokenStore interface {
	LoadAppToken() (*Token, error)
	SaveAppToken(Token) error
}

// MemoryTokenStore держит токен только в памяти процесса.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token *Token
}

func (s *MemoryTokenStore) LoadAppToken() (*Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == nil {
		return nil, os.ErrNotExist
	}
	t := *s.token
	return &t, nil
}

func (s *MemoryTokenStore) SaveAppToken(t Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = &t
	return nil
}
