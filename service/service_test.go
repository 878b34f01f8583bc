package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twitch-chat-bot/command"
	"twitch-chat-bot/model"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []string
}

func (s *recordingSender) Say(channel, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, channel+": "+text)
}

type stateLoader struct {
	states map[string]*model.ChannelState
	err    error
}

func (l *stateLoader) Load(_ context.Context, channel string) (*model.ChannelState, error) {
	if l.err != nil {
		return nil, l.err
	}
	if st, ok := l.states[channel]; ok {
		return st, nil
	}
	return model.NewChannelState(3), nil
}

type emoteSource struct {
	emotes []string
	err    error
}

func (e emoteSource) Emotes(context.Context, string) ([]string, error) {
	return e.emotes, e.err
}

type auditLog struct {
	entries []model.CommandLog
}

func (a *auditLog) Enqueue(entry model.CommandLog) bool {
	a.entries = append(a.entries, entry)
	return true
}

type fixture struct {
	bot    *Bot
	sender *recordingSender
	audit  *auditLog
	now    time.Time
}

func newFixture(t *testing.T, loader *stateLoader, emotes EmoteSource) *fixture {
	t.Helper()
	f := &fixture{
		sender: &recordingSender{},
		audit:  &auditLog{},
		now:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	dispatcher := command.NewDispatcher(command.Options{Sender: f.sender, Now: func() time.Time { return f.now }})
	f.bot = NewBot(Config{
		Username:       "chatbot",
		Channels:       []string{"streamer", "other"},
		FallbackEmotes: []string{"Kappa"},
	}, dispatcher, f.sender, loader, emotes, f.audit)
	f.bot.now = func() time.Time { return f.now }
	require.NoError(t, f.bot.Init(context.Background()))
	return f
}

func TestInitLoadsChannelsAndEmotes(t *testing.T) {
	f := newFixture(t, &stateLoader{}, emoteSource{emotes: []string{"forsenE", "LUL"}})

	ch, ok := f.bot.Channel("STREAMER")
	require.True(t, ok)
	assert.Equal(t, []string{"forsenE", "LUL"}, ch.Emotes)

	_, ok = f.bot.Channel("other")
	assert.True(t, ok)
}

func TestInitFallsBackWhenEmotesUnavailable(t *testing.T) {
	f := newFixture(t, &stateLoader{}, emoteSource{err: errors.New("helix down")})

	ch, ok := f.bot.Channel("streamer")
	require.True(t, ok)
	assert.Equal(t, []string{"Kappa"}, ch.Emotes)
}

func TestInitPropagatesLoadError(t *testing.T) {
	bot := NewBot(Config{Channels: []string{"streamer"}}, command.NewDispatcher(command.Options{}), &recordingSender{}, &stateLoader{err: errors.New("db down")}, nil, nil)
	assert.Error(t, bot.Init(context.Background()))
}

func TestHandleChatRepliesAndAudits(t *testing.T) {
	state := model.NewChannelState(3)
	state.PutCommand(model.CustomCommand{Name: "!hi", Message: "hello %author%", Kind: model.KindText})
	f := newFixture(t, &stateLoader{states: map[string]*model.ChannelState{"streamer": state}}, nil)

	f.bot.HandleChat(context.Background(), model.ChatMessage{
		ID: "m1", Channel: "streamer", UserID: "7", Username: "alice", DisplayName: "Alice", Text: "!HI there",
	})

	assert.Equal(t, []string{"streamer: hello Alice"}, f.sender.sent)
	require.Len(t, f.audit.entries, 1)
	entry := f.audit.entries[0]
	assert.Equal(t, "m1", entry.MessageID)
	assert.Equal(t, "!hi", entry.Trigger)
	assert.Equal(t, "there", entry.Args)
	assert.Equal(t, "hello Alice", entry.Reply)
	assert.Equal(t, f.now, entry.HandledAt)
}

func TestHandleChatIgnoresNoise(t *testing.T) {
	f := newFixture(t, &stateLoader{}, nil)

	f.bot.HandleChat(context.Background(), model.ChatMessage{Channel: "streamer", Username: "alice", Text: "just chatting"})
	f.bot.HandleChat(context.Background(), model.ChatMessage{Channel: "unknown", Username: "alice", Text: "!test"})
	f.bot.HandleChat(context.Background(), model.ChatMessage{Channel: "streamer", Username: "ChatBot", Text: "!test"})

	assert.Empty(t, f.sender.sent)
	assert.Empty(t, f.audit.entries)
}

func TestHandleChatSystemCommand(t *testing.T) {
	f := newFixture(t, &stateLoader{}, nil)

	f.bot.HandleChat(context.Background(), model.ChatMessage{Channel: "streamer", Username: "alice", Text: "!test"})

	assert.Equal(t, []string{"streamer: Your connection is still working."}, f.sender.sent)
	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, "!test", f.audit.entries[0].Trigger)
}

func TestTickTimersFiresAfterInterval(t *testing.T) {
	state := model.NewChannelState(3)
	state.PutCommand(model.CustomCommand{Name: "!discord", Message: "%author% says join", Kind: model.KindTimer, Interval: 60})
	f := newFixture(t, &stateLoader{states: map[string]*model.ChannelState{"streamer": state}}, nil)

	f.bot.tickTimers()
	assert.Empty(t, f.sender.sent)

	f.now = f.now.Add(time.Minute)
	f.bot.tickTimers()
	assert.Equal(t, []string{"streamer: chatbot says join"}, f.sender.sent)
}

func TestRunTimersStopsOnCancel(t *testing.T) {
	f := newFixture(t, &stateLoader{}, nil)
	f.bot.cfg.TimerTick = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.bot.RunTimers(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("RunTimers did not stop")
	}
}

type stubRunner struct{ err error }

func (r stubRunner) Run(ctx context.Context) error {
	if r.err != nil {
		return r.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestServiceRunReturnsClientError(t *testing.T) {
	fail := errors.New("login failed")
	bot := NewBot(Config{Channels: []string{"streamer"}}, command.NewDispatcher(command.Options{}), &recordingSender{}, &stateLoader{}, nil, nil)

	err := New(stubRunner{err: fail}, bot).Run(context.Background())
	assert.ErrorIs(t, err, fail)
}
