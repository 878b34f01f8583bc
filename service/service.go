package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"twitch-chat-bot/command"
	"twitch-chat-bot/logging"
	"twitch-chat-bot/model"
)

// Runner — транспорт чата, блокирующийся до отмены контекста.
type Runner interface {
	Run(ctx context.Context) error
}

// Service управляет жизненным циклом Twitch клиента и таймеров бота.
type Service struct {
	client Runner
	bot    *Bot
}

// New создаёт Service с уже собранными клиентом и ботом.
func New(client Runner, bot *Bot) *Service {
	return &Service{client: client, bot: bot}
}

// Run загружает состояние каналов, затем параллельно запускает IRC клиент и
// таймеры. Блокируется до отмены контекста или первой ошибки.
func (s *Service) Run(ctx context.Context) error {
	if err := s.bot.Init(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.client.Run(gctx) })
	g.Go(func() error { return s.bot.RunTimers(gctx) })
	return g.Wait()
}

// StateLoader читает сохранённое состояние канала.
type StateLoader interface {
	Load(ctx context.Context, channel string) (*model.ChannelState, error)
}

// EmoteSource возвращает эмоуты канала для !slots.
type EmoteSource interface {
	Emotes(ctx context.Context, login string) ([]string, error)
}

// AuditLog принимает записи об обработанных командах.
type AuditLog interface {
	Enqueue(model.CommandLog) bool
}

// Config — параметры бота.
type Config struct {
	Username       string
	Channels       []string
	FallbackEmotes []string
	TimerTick      time.Duration
}

// Bot реализует twitch.Handler: направляет сообщения диспетчеру, отправляет
// ответы и пишет журнал команд.
type Bot struct {
	cfg        Config
	dispatcher *command.Dispatcher
	sender     command.Sender
	states     StateLoader
	emotes     EmoteSource
	audit      AuditLog
	now        func() time.Time
	log        zerolog.Logger

	mu       sync.RWMutex
	channels map[string]*command.Channel
}

// NewBot собирает бота. emotes и audit могут быть nil.
func NewBot(cfg Config, dispatcher *command.Dispatcher, sender command.Sender, states StateLoader, emotes EmoteSource, audit AuditLog) *Bot {
	if cfg.TimerTick <= 0 {
		cfg.TimerTick = time.Second
	}
	return &Bot{
		cfg:        cfg,
		dispatcher: dispatcher,
		sender:     sender,
		states:     states,
		emotes:     emotes,
		audit:      audit,
		now:        time.Now,
		log:        logging.Component("bot"),
		channels:   make(map[string]*command.Channel),
	}
}

// Init загружает состояние и эмоуты всех каналов из конфигурации.
func (b *Bot) Init(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, name := range b.cfg.Channels {
		g.Go(func() error {
			return b.join(gctx, name)
		})
	}
	return g.Wait()
}

func (b *Bot) join(ctx context.Context, name string) error {
	state, err := b.states.Load(ctx, name)
	if err != nil {
		return err
	}

	ch := command.NewChannel(name, state, b.loadEmotes(ctx, name))

	b.mu.Lock()
	b.channels[name] = ch
	b.mu.Unlock()

	b.log.Info().
		Str("channel", name).
		Int("commands", len(state.Commands)).
		Int("quotes", len(state.Quotes)).
		Int("emotes", len(ch.Emotes)).
		Msg("состояние канала загружено")
	return nil
}

func (b *Bot) loadEmotes(ctx context.Context, name string) []string {
	if b.emotes == nil {
		return b.cfg.FallbackEmotes
	}
	emotes, err := b.emotes.Emotes(ctx, name)
	if err != nil || len(emotes) == 0 {
		b.log.Warn().Err(err).Str("channel", name).Msg("эмоуты недоступны, используется резервный список")
		return b.cfg.FallbackEmotes
	}
	return emotes
}

// Channel возвращает контекст канала, если он загружен.
func (b *Bot) Channel(name string) (*command.Channel, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ch, ok := b.channels[strings.ToLower(name)]
	return ch, ok
}

// HandleChat обрабатывает одно сообщение чата.
func (b *Bot) HandleChat(ctx context.Context, msg model.ChatMessage) {
	ch, ok := b.Channel(msg.Channel)
	if !ok {
		return
	}
	if strings.EqualFold(msg.Username, b.cfg.Username) {
		return
	}

	res := b.dispatcher.Dispatch(ctx, ch, command.Message{
		Author:     authorName(msg),
		Permission: command.PermissionOf(msg),
		Text:       msg.Text,
	})
	if !res.Handled {
		return
	}

	if res.Reply != "" {
		b.sender.Say(ch.Name, res.Reply)
	}

	b.log.Debug().
		Str("channel", ch.Name).
		Str("user", msg.Username).
		Str("trigger", res.Trigger).
		Msg("команда обработана")

	if b.audit == nil {
		return
	}
	_, args := command.Parse(msg.Text)
	entry := model.CommandLog{
		MessageID: msg.ID,
		Channel:   ch.Name,
		UserID:    msg.UserID,
		Username:  msg.Username,
		Trigger:   strings.ToLower(res.Trigger),
		Args:      strings.Join(args.Args, " "),
		Reply:     res.Reply,
		HandledAt: b.now().UTC(),
	}
	if !b.audit.Enqueue(entry) {
		b.log.Warn().Str("channel", ch.Name).Msg("журнал команд: запись отброшена")
	}
}

// RunTimers раз в TimerTick проверяет таймер-команды всех каналов.
// Возвращает nil при отмене контекста.
func (b *Bot) RunTimers(ctx context.Context) error {
	ticker := time.NewTicker(b.cfg.TimerTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			b.tickTimers()
		}
	}
}

func (b *Bot) tickTimers() {
	b.mu.RLock()
	channels := make([]*command.Channel, 0, len(b.channels))
	for _, ch := range b.channels {
		channels = append(channels, ch)
	}
	b.mu.RUnlock()

	now := b.now()
	for _, ch := range channels {
		if n := b.dispatcher.FireTimers(ch, b.cfg.Username, now); n > 0 {
			b.log.Debug().Str("channel", ch.Name).Int("fired", n).Msg("таймеры отправлены")
		}
	}
}

func authorName(msg model.ChatMessage) string {
	if msg.DisplayName != "" {
		return msg.DisplayName
	}
	return msg.Username
}
