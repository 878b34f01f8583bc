package command

import (
	"context"
	"strconv"
	"strings"
)

const (
	defaultRollBound = 100
	slotsSize        = 3
)

func (d *Dispatcher) roll(_ context.Context, inv *Invocation) (string, error) {
	bound := defaultRollBound
	if inv.Args.Len() > 0 {
		if !inv.Args.Matches(argsPrefix + `\d{1,9}(\s|$)`) {
			return "", usage("!roll (upper bound)")
		}
		bound = inv.Args.Int(0)
		if bound < 1 {
			return "", usage("!roll (upper bound)")
		}
	}
	return "The roll returns " + strconv.Itoa(d.random.IntN(bound)) + "!", nil
}

// SlotsOdds форматирует шанс выигрыша для пула из n эмоутов.
func SlotsOdds(n int) string {
	return "1/" + strconv.Itoa(n*n)
}

// slots крутит три барабана из случайного пула эмоутов канала.
// Результат отправляется через Sender, ответа нет.
func (d *Dispatcher) slots(ctx context.Context, inv *Invocation) (string, error) {
	args := inv.Args
	settings := &inv.Channel.State.Settings

	if inv.Permission >= Moderator && args.Matches(argsPrefix+`(set)?emotes\s+\d{1,9}(\s|$)`) {
		n := args.Int(1)
		if n < 1 {
			return "The number of emotes must be at least 1.", nil
		}
		settings.SlotsEmotes = n
		if err := d.persist(ctx, inv.Channel); err != nil {
			return "", err
		}
		return "Slots use a pool of " + strconv.Itoa(n) + " emotes now (" + SlotsOdds(n) + " chance to win).", nil
	}

	if args.Matches(argsPrefix + `odds(\s|$)`) {
		return SlotsOdds(settings.SlotsEmotes) + " chance to win.", nil
	}

	pool := Sample(d.random, inv.Channel.Emotes, max(settings.SlotsEmotes, 1))
	if len(pool) == 0 {
		return "There are no emotes to play slots with.", nil
	}

	reels := make([]string, slotsSize)
	for i := range reels {
		reels[i] = Choice(d.random, pool)
	}

	d.say(inv.Channel, strings.Join(reels, " | "))
	if reels[0] == reels[1] && reels[1] == reels[2] {
		d.say(inv.Channel, inv.Author+" has won the slots! "+reels[0])
	}

	return "", nil
}
