package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config агрегирует значения конфигурации из переменных окружения.
type Config struct {
	Twitch   TwitchConfig   `envPrefix:"TWITCH_"`
	Postgres PostgresConfig `envPrefix:"POSTGRES_"`
	Batch    BatchConfig    `envPrefix:"BATCH_"`
	Bot      BotConfig      `envPrefix:"BOT_"`
	Helix    HelixConfig    `envPrefix:"HELIX_"`
	Speedrun SpeedrunConfig `envPrefix:"SPEEDRUN_"`
	Log      LogConfig      `envPrefix:"LOG_"`
}

// TwitchConfig содержит учётные данные и каналы для Twitch IRC клиента.
type TwitchConfig struct {
	Username     string   `env:"USERNAME" validate:"required"`
	OAuthToken   string   `env:"OAUTH_TOKEN" validate:"required"`
	Channels     []string `env:"CHANNELS" validate:"min=1"`
	ClientID     string   `env:"CLIENT_ID"`
	ClientSecret string   `env:"CLIENT_SECRET"`
	TokenFile    string   `env:"TOKEN_FILE" envDefault:".secrets/twitch_tokens.json"`
}

// PostgresConfig хранит параметры подключения к пулу базы данных.
type PostgresConfig struct {
	Host     string `env:"HOST" validate:"required"`
	Port     string `env:"PORT" envDefault:"5432" validate:"required"`
	DB       string `env:"DB" validate:"required"`
	User     string `env:"USER" validate:"required"`
	Password string `env:"PASSWORD" validate:"required"`
}

// DSN собирает строку подключения для pgx/pgxpool.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", p.User, p.Password, p.Host, p.Port, p.DB)
}

// BatchConfig задаёт параметры батчинга журнала команд.
type BatchConfig struct {
	MaxBatch      int           `env:"MAX" envDefault:"100" validate:"gt=0"`
	FlushEvery    time.Duration `env:"FLUSH_EVERY" envDefault:"1500ms" validate:"gt=0"`
	ChanBuffer    int           `env:"BUFFER" envDefault:"4096" validate:"gt=0"`
	StatsLogEvery time.Duration `env:"STATS_EVERY" envDefault:"5m" validate:"gt=0"`
	FlushTimeout  time.Duration `env:"FLUSH_TIMEOUT" envDefault:"5s" validate:"gt=0"`
}

// BotConfig — поведение бота в чате.
type BotConfig struct {
	SlotsEmotes     int           `env:"SLOTS_EMOTES" envDefault:"7" validate:"min=1"`
	FallbackEmotes  []string      `env:"FALLBACK_EMOTES" envDefault:"Kappa,PogChamp,LUL,4Head,BibleThump,SeemsGood,Kreygasm,NotLikeThis,ResidentSleeper,WutFace"`
	MessagesPer30s  int           `env:"MESSAGES_PER_30S" envDefault:"20" validate:"gt=0"`
	OutgoingBuffer  int           `env:"OUTGOING_BUFFER" envDefault:"256" validate:"gt=0"`
	StateTimeout    time.Duration `env:"STATE_TIMEOUT" envDefault:"5s" validate:"gt=0"`
	StateMaxRetries uint64        `env:"STATE_MAX_RETRIES" envDefault:"3"`
	TimerTick       time.Duration `env:"TIMER_TICK" envDefault:"1s" validate:"gt=0"`
}

// HelixConfig — Twitch Helix API.
type HelixConfig struct {
	BaseURL  string        `env:"BASE_URL" envDefault:"https://api.twitch.tv/helix" validate:"url"`
	TokenURL string        `env:"TOKEN_URL" envDefault:"https://id.twitch.tv/oauth2/token" validate:"url"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"10s" validate:"gt=0"`
}

// SpeedrunConfig — API speedrun.com.
type SpeedrunConfig struct {
	BaseURL string        `env:"BASE_URL" envDefault:"https://www.speedrun.com/api/v1" validate:"url"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s" validate:"gt=0"`
}

// LogConfig — параметры логгера.
type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Pretty bool   `env:"PRETTY" envDefault:"false"`
}

// HelixEnabled сообщает, заданы ли учётные данные приложения для Helix.
func (c Config) HelixEnabled() bool {
	return c.Twitch.ClientID != "" && c.Twitch.ClientSecret != ""
}

// Load читает .env (если есть) и переменные окружения и возвращает валидированную Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}

	cfg.Twitch.Username = strings.TrimSpace(cfg.Twitch.Username)
	cfg.Twitch.OAuthToken = strings.TrimSpace(cfg.Twitch.OAuthToken)
	cfg.Twitch.Channels = normalizeChannels(cfg.Twitch.Channels)
	cfg.Bot.FallbackEmotes = trimAll(cfg.Bot.FallbackEmotes)

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

func normalizeChannels(channels []string) []string {
	out := make([]string, 0, len(channels))
	for _, p := range channels {
		p = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(p), "#")))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func trimAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
