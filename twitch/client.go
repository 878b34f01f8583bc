package twitch

import (
	"context"
	"strings"
	"time"

	twitchirc "github.com/gempir/go-twitch-irc/v4"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"twitch-chat-bot/config"
	"twitch-chat-bot/logging"
	"twitch-chat-bot/model"
)

// Handler принимает сообщения чата, преобразованные в доменные модели.
type Handler interface {
	HandleChat(context.Context, model.ChatMessage)
}

// Options задаёт параметры исходящей очереди.
type Options struct {
	MessagesPer30s int
	OutgoingBuffer int
}

type outgoing struct {
	channel string
	text    string
}

// Client оборачивает go-twitch-irc: подписка на каналы, входящие сообщения
// и отправка ответов с ограничением частоты.
type Client struct {
	client   *twitchirc.Client
	handler  Handler
	channels []string
	baseCtx  context.Context

	queue   chan outgoing
	limiter *rate.Limiter
	say     func(channel, text string)
	log     zerolog.Logger
}

// NewClient инициализирует IRC-клиент и регистрирует колбэки.
// Обработчик можно задать позже через SetHandler.
func NewClient(cfg config.TwitchConfig, opts Options, handler Handler) *Client {
	client := twitchirc.NewClient(cfg.Username, cfg.OAuthToken)

	c := newClient(opts, client.Say)
	c.client = client
	c.handler = handler
	c.channels = cfg.Channels

	client.OnPrivateMessage(func(m twitchirc.PrivateMessage) {
		if c.handler == nil {
			return
		}
		c.handler.HandleChat(c.context(), toChatMessage(m))
	})

	client.OnConnect(func() {
		c.log.Info().Strs("channels", c.channels).Msg("подключено, подписка на каналы")
		for _, ch := range c.channels {
			if ch == "" {
				continue
			}
			client.Join(ch)
		}
	})

	client.OnSelfJoinMessage(func(m twitchirc.UserJoinMessage) {
		c.log.Info().Str("channel", m.Channel).Msg("бот вошёл в канал")
	})

	client.OnReconnectMessage(func(message twitchirc.ReconnectMessage) {
		c.log.Warn().Interface("message", message).Msg("сервер запросил RECONNECT")
	})

	client.OnNoticeMessage(func(msg twitchirc.NoticeMessage) {
		c.log.Info().
			Str("channel", normalizeChannel(msg.Channel)).
			Str("msg_id", msg.MsgID).
			Str("text", msg.Message).
			Msg("NOTICE от сервера")
	})

	return c
}

func newClient(opts Options, say func(channel, text string)) *Client {
	perMessage := 30 * time.Second / time.Duration(max(opts.MessagesPer30s, 1))
	return &Client{
		queue:   make(chan outgoing, max(opts.OutgoingBuffer, 1)),
		limiter: rate.NewLimiter(rate.Every(perMessage), 1),
		say:     say,
		log:     logging.Component("twitch"),
	}
}

// SetHandler назначает обработчик входящих сообщений.
func (c *Client) SetHandler(h Handler) {
	c.handler = h
}

// Say ставит сообщение в исходящую очередь; при переполнении сообщение
// отбрасывается.
func (c *Client) Say(channel, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	select {
	case c.queue <- outgoing{channel: normalizeChannel(channel), text: text}:
	default:
		c.log.Warn().Str("channel", channel).Msg("исходящая очередь заполнена, сообщение отброшено")
	}
}

// Run подключает клиента и блокируется до отмены контекста или ошибки.
func (c *Client) Run(ctx context.Context) error {
	c.baseCtx = ctx
	errCh := make(chan error, 1)

	go c.drain(ctx)

	go func() {
		errCh <- c.client.Connect()
	}()

	select {
	case <-ctx.Done():
		_ = c.client.Disconnect()
		<-errCh
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (c *Client) drain(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.queue:
			if err := c.limiter.Wait(ctx); err != nil {
				return
			}
			c.say(msg.channel, msg.text)
		}
	}
}

func toChatMessage(m twitchirc.PrivateMessage) model.ChatMessage {
	badges := make(map[string]int, len(m.User.Badges))
	for k, v := range m.User.Badges {
		badges[k] = v
	}

	sentAt := m.Time
	if sentAt.IsZero() {
		sentAt = time.Now().UTC()
	}

	broadcaster := badges["broadcaster"] > 0
	return model.ChatMessage{
		ID:            m.ID,
		Channel:       normalizeChannel(m.Channel),
		UserID:        m.User.ID,
		Username:      m.User.Name,
		DisplayName:   m.User.DisplayName,
		Text:          m.Message,
		Badges:        badges,
		IsMod:         badges["moderator"] > 0 || broadcaster,
		IsBroadcaster: broadcaster,
		IsSubscriber:  badges["subscriber"] > 0 || badges["founder"] > 0,
		SentAt:        sentAt,
	}
}

func normalizeChannel(ch string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ch), "#"))
}

func (c *Client) context() context.Context {
	if c.baseCtx != nil {
		return c.baseCtx
	}
	return context.Background()
}
