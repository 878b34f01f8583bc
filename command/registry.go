package command

import (
	"context"
	"sort"
	"strings"
)

// argsPrefix пропускает триггер в шаблонах Matches.
const argsPrefix = `^\s*\S+\s+`

// HandlerFunc — системный обработчик. Пустой ответ означает, что вывод уже
// отправлен через Sender или отвечать не нужно.
type HandlerFunc func(d *Dispatcher, ctx context.Context, inv *Invocation) (string, error)

// Descriptor описывает системную команду.
type Descriptor struct {
	Name         string
	MinArguments int
	Usage        string
	Run          HandlerFunc
}

// Registry сопоставляет триггер (с учётом регистра) системной команде.
type Registry struct {
	handlers map[string]Descriptor
}

// NewRegistry возвращает реестр встроенных команд.
func NewRegistry() *Registry {
	r := &Registry{handlers: make(map[string]Descriptor)}

	r.register(Descriptor{Name: "!command", MinArguments: 2, Usage: "!command (add|edit|del|transform) (name) [...]", Run: (*Dispatcher).manageCommand})
	r.register(Descriptor{Name: "!test", Run: (*Dispatcher).test})
	r.register(Descriptor{Name: "!roll", Usage: "!roll (upper bound)", Run: (*Dispatcher).roll})
	r.register(Descriptor{Name: "!slots", Run: (*Dispatcher).slots})
	r.register(Descriptor{Name: "!uptime", Run: (*Dispatcher).uptime})
	r.register(Descriptor{Name: "!src", MinArguments: 3, Usage: srcUsage, Run: (*Dispatcher).src})
	r.register(Descriptor{Name: "!quote", Run: (*Dispatcher).quote})

	return r
}

func (r *Registry) register(d Descriptor) {
	r.handlers[d.Name] = d
}

// Lookup ищет системную команду по триггеру.
func (r *Registry) Lookup(trigger string) (Descriptor, bool) {
	d, ok := r.handlers[trigger]
	return d, ok
}

// Has сообщает, занято ли имя системной командой (без учёта регистра).
func (r *Registry) Has(name string) bool {
	for trigger := range r.handlers {
		if strings.EqualFold(trigger, name) {
			return true
		}
	}
	return false
}

// Triggers возвращает отсортированный список системных триггеров.
func (r *Registry) Triggers() []string {
	out := make([]string, 0, len(r.handlers))
	for trigger := range r.handlers {
		out = append(out, trigger)
	}
	sort.Strings(out)
	return out
}
