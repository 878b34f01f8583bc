package command

import (
	"context"
	"sync"
	"time"

	"twitch-chat-bot/model"
)

// fixedRandom по кругу возвращает заданные значения по модулю n.
type fixedRandom struct {
	values []int
	i      int
}

func (r *fixedRandom) IntN(n int) int {
	if len(r.values) == 0 {
		return 0
	}
	v := r.values[r.i%len(r.values)]
	r.i++
	return v % n
}

type recordingSender struct {
	mu    sync.Mutex
	lines []string
}

func (s *recordingSender) Say(_, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, text)
}

type memoryStore struct {
	saves int
	err   error
}

func (s *memoryStore) Save(_ context.Context, _ string, _ *model.ChannelState) error {
	if s.err != nil {
		return s.err
	}
	s.saves++
	return nil
}

type fixture struct {
	dispatcher *Dispatcher
	channel    *Channel
	sender     *recordingSender
	store      *memoryStore
	random     *fixedRandom
}

func newFixture(opts ...func(*Options)) *fixture {
	f := &fixture{
		sender: &recordingSender{},
		store:  &memoryStore{},
		random: &fixedRandom{},
	}
	o := Options{
		Sender: f.sender,
		Store:  f.store,
		Random: f.random,
		Now:    func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
	}
	for _, opt := range opts {
		opt(&o)
	}
	f.dispatcher = NewDispatcher(o)
	f.channel = NewChannel("streamer", model.NewChannelState(4), []string{"Kappa", "PogChamp", "LUL", "4Head"})
	return f
}

func (f *fixture) run(perm Permission, line string) Result {
	return f.dispatcher.Dispatch(context.Background(), f.channel, Message{Author: "bob", Permission: perm, Text: line})
}

func invocation(perm Permission, line string) *Invocation {
	_, args := Parse(line)
	return &Invocation{Author: "bob", Permission: perm, Args: args}
}
