package command

import (
	"time"

	"twitch-chat-bot/model"
)

// FireTimers отправляет шаблоны таймер-команд канала, чей интервал истёк.
// Первый запуск происходит через интервал после того, как таймер впервые
// замечен. author подставляется в %author%. Возвращает число отправленных строк.
func (d *Dispatcher) FireTimers(ch *Channel, author string, now time.Time) int {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	active := make(map[string]bool)
	fired := 0

	for i := range ch.State.Commands {
		cmd := &ch.State.Commands[i]
		if cmd.Kind != model.KindTimer || cmd.Interval <= 0 {
			continue
		}
		active[cmd.Name] = true

		last, seen := ch.timerSeen[cmd.Name]
		if !seen {
			ch.timerSeen[cmd.Name] = now
			continue
		}
		if now.Sub(last) < time.Duration(cmd.Interval)*time.Second {
			continue
		}

		ch.timerSeen[cmd.Name] = now
		d.say(ch, RenderCommand(cmd, author, Arguments{}, d.random))
		fired++
	}

	for name := range ch.timerSeen {
		if !active[name] {
			delete(ch.timerSeen, name)
		}
	}

	return fired
}
