package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"twitch-chat-bot/model"
)

const srcUsage = "!src (game handle) (category) (place)"

func (d *Dispatcher) uptime(ctx context.Context, inv *Invocation) (string, error) {
	if d.streams == nil {
		return "Unable to retrieve stream information.", nil
	}

	stream, err := d.streams.Stream(ctx, inv.Channel.Name)
	switch {
	case errors.Is(err, model.ErrNotFound):
		return inv.Channel.Name + " is not live.", nil
	case err != nil:
		d.log.Warn().Err(err).Str("channel", inv.Channel.Name).Msg("uptime: запрос трансляции не удался")
		return "Unable to retrieve stream information.", nil
	}

	return "Uptime: " + FormatUptime(d.now().Sub(stream.StartedAt)), nil
}

// FormatUptime форматирует длительность как "H hours M minutes S seconds".
func FormatUptime(elapsed time.Duration) string {
	elapsed = max(elapsed, 0)
	total := int(elapsed / time.Second)
	return plural(total/3600, "hour") + " " + plural(total/60%60, "minute") + " " + plural(total%60, "second")
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.Itoa(n) + " " + unit + "s"
}

func (d *Dispatcher) src(ctx context.Context, inv *Invocation) (string, error) {
	args := inv.Args
	place, ok := args.TryInt(args.Len() - 1)
	if !ok || place < 1 {
		return "", usage(srcUsage)
	}
	if d.speedrun == nil {
		return srcUnavailable, nil
	}

	handle := args.Get(0)
	game, err := d.speedrun.Game(ctx, handle)
	if err != nil {
		return d.srcFailure(err, "Error: Unable to find the game '"+handle+"' on SRC"), nil
	}

	categories, err := d.speedrun.Categories(ctx, *game)
	if err != nil {
		return d.srcFailure(err, "Error: Unable retrieve the game's categories"), nil
	}

	categoryName := args.Join(1, args.Len()-1, " ")
	var category *model.Category
	for i := range categories {
		if strings.EqualFold(categories[i].Name, categoryName) {
			category = &categories[i]
			break
		}
	}
	if category == nil {
		return "Error: Unable to find the category '" + categoryName + "'.", nil
	}

	ordinal := strconv.Itoa(place) + PlaceEnding(place)
	runs, err := d.speedrun.LeaderboardPlace(ctx, *game, *category, place)
	if err == nil && len(runs) == 0 {
		err = model.ErrNotFound
	}
	if err != nil {
		return d.srcFailure(err, "Error: No run in "+ordinal+" exists."), nil
	}

	run := runs[0]
	prefix := ordinal + " place in " + game.Name + " " + category.Name
	if len(runs) == 1 {
		return prefix + " is held by " + run.Player + " with a time of " + FormatRunTime(run.Time) + " | Video: " + run.VideoLink, nil
	}

	players := make([]string, len(runs))
	for i, r := range runs {
		players[i] = r.Player
	}
	players[len(players)-1] = "and " + players[len(players)-1]
	return prefix + " is a " + strconv.Itoa(len(runs)) + "-way tie between " + strings.Join(players, ", ") + " with a time of " + FormatRunTime(run.Time), nil
}

const srcUnavailable = "Error: Unable to retrieve data from speedrun.com."

func (d *Dispatcher) srcFailure(err error, notFound string) string {
	if errors.Is(err, model.ErrNotFound) {
		return notFound
	}
	d.log.Warn().Err(err).Msg("src: запрос к speedrun.com не удался")
	return srcUnavailable
}

// FormatRunTime печатает время забега без ведущих нулевых компонент: 1:2:3.045.
func FormatRunTime(t time.Duration) string {
	hours := int(t / time.Hour)
	minutes := int(t/time.Minute) % 60
	seconds := int(t/time.Second) % 60
	millis := int(t/time.Millisecond) % 1000

	var b strings.Builder
	if hours > 0 {
		b.WriteString(strconv.Itoa(hours) + ":")
	}
	if minutes > 0 || hours > 0 {
		b.WriteString(strconv.Itoa(minutes) + ":")
	}
	if seconds > 0 || minutes > 0 || hours > 0 {
		b.WriteString(strconv.Itoa(seconds))
	}
	if millis > 0 {
		fmt.Fprintf(&b, ".%03d", millis)
	}
	return b.String()
}

// PlaceEnding возвращает английский суффикс порядкового числительного.
func PlaceEnding(place int) string {
	if n := place % 100; n >= 11 && n <= 13 {
		return "th"
	}
	switch place % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
