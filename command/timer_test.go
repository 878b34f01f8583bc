package command

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"twitch-chat-bot/model"
)

func TestFireTimers(t *testing.T) {
	f := newFixture()
	f.channel.State.PutCommand(model.CustomCommand{Name: "discord", Message: "Join the discord! (every %interval%s)", Kind: model.KindTimer, Interval: 60})
	f.channel.State.PutCommand(model.CustomCommand{Name: "idle", Message: "never", Kind: model.KindTimer})
	f.channel.State.PutCommand(model.CustomCommand{Name: "hello", Message: "text", Kind: model.KindText})

	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	assert.Zero(t, f.dispatcher.FireTimers(f.channel, "bot", start))
	assert.Zero(t, f.dispatcher.FireTimers(f.channel, "bot", start.Add(59*time.Second)))
	assert.Equal(t, 1, f.dispatcher.FireTimers(f.channel, "bot", start.Add(60*time.Second)))
	assert.Zero(t, f.dispatcher.FireTimers(f.channel, "bot", start.Add(90*time.Second)))
	assert.Equal(t, 1, f.dispatcher.FireTimers(f.channel, "bot", start.Add(121*time.Second)))

	assert.Equal(t, []string{"Join the discord! (every 60s)", "Join the discord! (every 60s)"}, f.sender.lines)
}

func TestFireTimersForgetsRemovedTimers(t *testing.T) {
	f := newFixture()
	f.channel.State.PutCommand(model.CustomCommand{Name: "t", Message: "tick", Kind: model.KindTimer, Interval: 10})
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	f.dispatcher.FireTimers(f.channel, "bot", start)
	f.channel.State.RemoveCommand("t")
	f.dispatcher.FireTimers(f.channel, "bot", start.Add(time.Second))
	assert.Empty(t, f.channel.timerSeen)

	f.channel.State.PutCommand(model.CustomCommand{Name: "t", Message: "tick", Kind: model.KindTimer, Interval: 10})
	assert.Zero(t, f.dispatcher.FireTimers(f.channel, "bot", start.Add(20*time.Second)))
	assert.Equal(t, 1, f.dispatcher.FireTimers(f.channel, "bot", start.Add(30*time.Second)))
}
