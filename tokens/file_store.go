package tokens

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultTokenFile — путь по умолчанию для сохранённого токена приложения.
const DefaultTokenFile = ".secrets/twitch_tokens.json"

// FileTokenStore хранит токен приложения в JSON файле с правами 0600.
type FileTokenStore struct {
	Path string
}

type fileToken struct {
	Access    string `json:"access"`
	ExpiresAt string `json:"expires_at"`
}

func (store FileTokenStore) path() string {
	if strings.TrimSpace(store.Path) == "" {
		return DefaultTokenFile
	}
	return store.Path
}

// LoadAppToken читает токен из файла. Отсутствие файла даёт os.ErrNotExist.
func (store FileTokenStore) LoadAppToken() (*Token, error) {
	data, err := os.ReadFile(store.path())
	if err != nil {
		return nil, fmt.Errorf("load app token: read file: %w", err)
	}

	var payload fileToken
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("load app token: decode json: %w", err)
	}

	expiresAt, err := time.Parse(time.RFC3339, payload.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("load app token: parse expires_at: %w", err)
	}

	return &Token{Access: payload.Access, ExpiresAt: expiresAt}, nil
}

// SaveAppToken перезаписывает файл токена, создавая каталог при необходимости.
func (store FileTokenStore) SaveAppToken(token Token) error {
	path := store.path()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("save app token: create dir: %w", err)
	}

	data, err := json.Marshal(fileToken{
		Access:    token.Access,
		ExpiresAt: token.ExpiresAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("save app token: encode json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("save app token: write file: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("save app token: chmod file: %w", err)
	}

	return nil
}
