package command

import (
	"context"
	"strconv"
	"strings"

	"twitch-chat-bot/model"
)

// quote реализует !quote add|edit|del|search и вывод случайной цитаты.
func (d *Dispatcher) quote(ctx context.Context, inv *Invocation) (string, error) {
	args := inv.Args
	state := inv.Channel.State
	moderator := inv.Permission >= Moderator

	switch sub := strings.ToLower(args.Get(0)); {
	case sub == "add" && moderator:
		if !args.Matches(argsPrefix + `add\s+\S+\s+\S`) {
			return "", usage("!quote add (quotee) (message)")
		}
		quotee := args.Get(1)
		state.Quotes = append(state.Quotes, model.Quote{Quotee: quotee, Message: args.Join(2, args.Len(), " ")})
		if err := d.persist(ctx, inv.Channel); err != nil {
			return "", err
		}
		return "Quote #" + strconv.Itoa(len(state.Quotes)) + " by " + quotee + " has been added.", nil

	case sub == "edit" && moderator:
		if !args.Matches(argsPrefix + `edit\s+\d{1,9}\s+\S+\s+\S`) {
			return "", usage("!quote edit (quote number) (quotee) (message)")
		}
		i := args.Int(1) - 1
		if i < 0 || i >= len(state.Quotes) {
			return "Quote #" + args.Get(1) + " does not exist.", nil
		}
		state.Quotes[i] = model.Quote{Quotee: args.Get(2), Message: args.Join(3, args.Len(), " ")}
		if err := d.persist(ctx, inv.Channel); err != nil {
			return "", err
		}
		return "Quote #" + args.Get(1) + " has been edited.", nil

	case sub == "del" && moderator:
		if !args.Matches(argsPrefix + `del\s+\d{1,9}(\s|$)`) {
			return "", usage("!quote del (quote number)")
		}
		i := args.Int(1) - 1
		if i < 0 || i >= len(state.Quotes) {
			return "Quote #" + args.Get(1) + " does not exist.", nil
		}
		state.Quotes = append(state.Quotes[:i], state.Quotes[i+1:]...)
		if err := d.persist(ctx, inv.Channel); err != nil {
			return "", err
		}
		return "Quote #" + args.Get(1) + " has been removed.", nil

	case sub == "search":
		return d.searchQuotes(inv), nil
	}

	if len(state.Quotes) == 0 {
		return "No quotes have been added, yet.", nil
	}

	i := d.random.IntN(len(state.Quotes))
	return formatQuote(i, state.Quotes[i]), nil
}

// searchQuotes отправляет каждую цитату, содержащую хотя бы одно из слов.
func (d *Dispatcher) searchQuotes(inv *Invocation) string {
	words := inv.Args.Slice(1, inv.Args.Len())
	for i := range words {
		words[i] = strings.ToLower(words[i])
	}

	var matches []int
	for i, q := range inv.Channel.State.Quotes {
		message := strings.ToLower(q.Message)
		for _, w := range words {
			if strings.Contains(message, w) {
				matches = append(matches, i)
				break
			}
		}
	}

	if len(matches) == 0 {
		return "No matching quotes found."
	}

	for _, i := range matches {
		d.say(inv.Channel, formatQuote(i, inv.Channel.State.Quotes[i]))
	}
	return ""
}

func formatQuote(i int, q model.Quote) string {
	return "Quote #" + strconv.Itoa(i+1) + " by " + q.Quotee + ": \"" + q.Message + "\""
}
