package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlotsOdds(t *testing.T) {
	assert.Equal(t, "1/16", SlotsOdds(4))
	assert.Equal(t, "1/1", SlotsOdds(1))

	f := newFixture()
	assert.Equal(t, "1/16 chance to win.", f.run(Viewer, "!slots odds").Reply)
}

func TestSlotsSetPoolSize(t *testing.T) {
	f := newFixture()

	assert.Equal(t, "Slots use a pool of 3 emotes now (1/9 chance to win).", f.run(Moderator, "!slots setemotes 3").Reply)
	assert.Equal(t, 3, f.channel.State.Settings.SlotsEmotes)
	assert.Equal(t, 1, f.store.saves)

	assert.Equal(t, "The number of emotes must be at least 1.", f.run(Moderator, "!slots emotes 0").Reply)
	assert.Equal(t, 3, f.channel.State.Settings.SlotsEmotes)

	// non-moderators spin instead
	res := f.run(Viewer, "!slots emotes 10")
	assert.Empty(t, res.Reply)
	assert.Equal(t, 3, f.channel.State.Settings.SlotsEmotes)
	assert.Len(t, f.sender.lines, 2)
}

func TestSlotsWinAnnouncement(t *testing.T) {
	f := newFixture()

	res := f.run(Viewer, "!slots")
	assert.True(t, res.Handled)
	assert.Empty(t, res.Reply)
	assert.Equal(t, []string{"Kappa | Kappa | Kappa", "bob has won the slots! Kappa"}, f.sender.lines)
}

func TestSlotsLoss(t *testing.T) {
	f := newFixture()
	// pool sampling consumes the first four values, the reels the next three
	f.random.values = []int{0, 0, 0, 0, 0, 1, 2}

	f.run(Viewer, "!slots")
	assert.Equal(t, []string{"Kappa | PogChamp | LUL"}, f.sender.lines)
}

func TestSlotsPoolIsCappedByEmotes(t *testing.T) {
	f := newFixture()
	f.channel.State.Settings.SlotsEmotes = 50
	f.random.values = []int{0, 0, 0, 0, 3, 3, 3}

	f.run(Viewer, "!slots")
	assert.Equal(t, "4Head | 4Head | 4Head", f.sender.lines[0])

	f.channel.SetEmotes(nil)
	assert.Equal(t, "There are no emotes to play slots with.", f.run(Viewer, "!slots").Reply)
}

func TestSample(t *testing.T) {
	items := []string{"a", "b", "c", "d"}

	got := Sample(&fixedRandom{values: []int{3, 0}}, items, 2)
	assert.Equal(t, []string{"d", "b"}, got)
	assert.Equal(t, []string{"a", "b", "c", "d"}, items)

	assert.Len(t, Sample(&fixedRandom{}, items, 10), 4)
	assert.Empty(t, Sample(&fixedRandom{}, items, 0))
	assert.Equal(t, "", Choice(&fixedRandom{}, []string{}))
}
