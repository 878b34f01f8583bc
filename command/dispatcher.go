package command

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"twitch-chat-bot/model"
)

const genericFailure = "Something went wrong, please try again later."

// Sender отправляет строку в канал без ожидания результата.
type Sender interface {
	Say(channel, text string)
}

// Persister сохраняет состояние канала целиком.
type Persister interface {
	Save(ctx context.Context, channel string, state *model.ChannelState) error
}

// StreamLookup возвращает активную трансляцию или model.ErrNotFound.
type StreamLookup interface {
	Stream(ctx context.Context, login string) (*model.Stream, error)
}

// SpeedrunLookup — чтение данных speedrun.com. Отсутствие объекта
// сообщается через model.ErrNotFound.
type SpeedrunLookup interface {
	Game(ctx context.Context, handle string) (*model.Game, error)
	Categories(ctx context.Context, game model.Game) ([]model.Category, error)
	LeaderboardPlace(ctx context.Context, game model.Game, category model.Category, place int) ([]model.Run, error)
}

// UsageError — неверная форма аргументов; показывается пользователю как подсказка.
type UsageError struct {
	Syntax string
}

func (e *UsageError) Error() string { return "Correct Syntax: " + e.Syntax }

func usage(syntax string) error { return &UsageError{Syntax: syntax} }

// Channel — состояние одного канала. mu сериализует все команды и таймеры канала.
type Channel struct {
	Name   string
	State  *model.ChannelState
	Emotes []string

	mu        sync.Mutex
	timerSeen map[string]time.Time
}

// NewChannel создаёт контекст канала.
func NewChannel(name string, state *model.ChannelState, emotes []string) *Channel {
	return &Channel{
		Name:      name,
		State:     state,
		Emotes:    emotes,
		timerSeen: make(map[string]time.Time),
	}
}

// SetEmotes заменяет список эмоутов канала.
func (c *Channel) SetEmotes(emotes []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Emotes = emotes
}

// Invocation — один вызов команды.
type Invocation struct {
	Channel    *Channel
	Author     string
	Permission Permission
	Args       Arguments
}

// Message — входящая строка чата.
type Message struct {
	Author     string
	Permission Permission
	Text       string
}

// Result — итог диспетчеризации. Handled=false для нераспознанного триггера.
type Result struct {
	Handled bool
	Trigger string
	Reply   string
}

// Options — зависимости диспетчера.
type Options struct {
	Registry *Registry
	Sender   Sender
	Store    Persister
	Random   Random
	Streams  StreamLookup
	Speedrun SpeedrunLookup
	Now      func() time.Time
	Logger   zerolog.Logger
}

// Dispatcher направляет строки чата системным и пользовательским командам.
type Dispatcher struct {
	registry *Registry
	sender   Sender
	store    Persister
	random   Random
	streams  StreamLookup
	speedrun SpeedrunLookup
	now      func() time.Time
	log      zerolog.Logger
}

// NewDispatcher собирает Dispatcher; незаданные Registry, Random и Now
// заменяются значениями по умолчанию.
func NewDispatcher(opts Options) *Dispatcher {
	d := &Dispatcher{
		registry: opts.Registry,
		sender:   opts.Sender,
		store:    opts.Store,
		random:   opts.Random,
		streams:  opts.Streams,
		speedrun: opts.Speedrun,
		now:      opts.Now,
		log:      opts.Logger,
	}
	if d.registry == nil {
		d.registry = NewRegistry()
	}
	if d.random == nil {
		d.random = NewRandom()
	}
	if d.now == nil {
		d.now = time.Now
	}
	return d
}

// Registry возвращает реестр системных команд.
func (d *Dispatcher) Registry() *Registry { return d.registry }

// Dispatch обрабатывает строку чата в контексте канала ch.
func (d *Dispatcher) Dispatch(ctx context.Context, ch *Channel, msg Message) (res Result) {
	trigger, args := Parse(msg.Text)
	if trigger == "" {
		return Result{}
	}

	ch.mu.Lock()
	defer ch.mu.Unlock()

	// снимок до изменения: при ошибке сохранения состояние откатывается целиком
	var snapshot *model.ChannelState
	rollback := func() {
		if snapshot != nil {
			*ch.State = *snapshot
		}
	}

	defer func() {
		if r := recover(); r != nil {
			pe, ok := r.(*ParseError)
			if !ok {
				panic(r)
			}
			rollback()
			d.log.Error().Err(pe).Str("channel", ch.Name).Str("trigger", trigger).Msg("команда: разбор аргумента без проверки формы")
			res = Result{Handled: true, Trigger: trigger, Reply: genericFailure}
		}
	}()

	inv := &Invocation{Channel: ch, Author: msg.Author, Permission: msg.Permission, Args: args}

	if cmd, ok := ch.State.Command(strings.ToLower(trigger)); ok {
		snapshot = ch.State.Clone()
		reply, mutated := Execute(cmd, inv, d.random)
		if mutated {
			if err := d.persist(ctx, ch); err != nil {
				rollback()
				return d.failure(ch, trigger, err)
			}
		}
		return Result{Handled: true, Trigger: trigger, Reply: reply}
	}

	desc, ok := d.registry.Lookup(trigger)
	if !ok {
		return Result{}
	}

	if args.Len() < desc.MinArguments {
		if desc.Usage == "" {
			return Result{Handled: true, Trigger: trigger}
		}
		return Result{Handled: true, Trigger: trigger, Reply: usage(desc.Usage).Error()}
	}

	snapshot = ch.State.Clone()
	reply, err := desc.Run(d, ctx, inv)
	if err != nil {
		rollback()
		return d.failure(ch, trigger, err)
	}
	return Result{Handled: true, Trigger: trigger, Reply: reply}
}

func (d *Dispatcher) failure(ch *Channel, trigger string, err error) Result {
	var ue *UsageError
	if errors.As(err, &ue) {
		return Result{Handled: true, Trigger: trigger, Reply: ue.Error()}
	}
	d.log.Error().Err(err).Str("channel", ch.Name).Str("trigger", trigger).Msg("команда: ошибка обработчика")
	return Result{Handled: true, Trigger: trigger, Reply: genericFailure}
}

func (d *Dispatcher) persist(ctx context.Context, ch *Channel) error {
	if d.store == nil {
		return nil
	}
	return d.store.Save(ctx, ch.Name, ch.State)
}

func (d *Dispatcher) say(ch *Channel, text string) {
	if d.sender != nil {
		d.sender.Say(ch.Name, text)
	}
}

// commandNameInUse проверяет пересечение с пользовательскими и системными командами.
func (d *Dispatcher) commandNameInUse(ch *Channel, name string) bool {
	if _, ok := ch.State.Command(name); ok {
		return true
	}
	return d.registry.Has(name)
}

func (d *Dispatcher) test(_ context.Context, _ *Invocation) (string, error) {
	return "Your connection is still working.", nil
}
