package command

import (
	"context"
	"strings"

	"twitch-chat-bot/model"
)

// manageCommand реализует !command add|edit|del|transform.
// Вызовы без прав модератора молча игнорируются.
func (d *Dispatcher) manageCommand(ctx context.Context, inv *Invocation) (string, error) {
	if inv.Permission < Moderator {
		return "", nil
	}

	args := inv.Args
	state := inv.Channel.State
	name := strings.ToLower(args.Get(1))

	switch {
	case args.Matches(argsPrefix + `add\s+\S+\s+\S`):
		if d.commandNameInUse(inv.Channel, name) {
			return "Command name " + name + " is already in use.", nil
		}
		state.PutCommand(model.CustomCommand{
			Name:    name,
			Message: args.Join(2, args.Len(), " "),
			Kind:    model.KindText,
		})
		if err := d.persist(ctx, inv.Channel); err != nil {
			return "", err
		}
		return "Command " + name + " has been added.", nil

	case args.Matches(argsPrefix + `edit\s+\S+\s+\S`):
		cmd, ok := state.Command(name)
		if !ok {
			return "Command " + name + " does not exist.", nil
		}
		cmd.Message = args.Join(2, args.Len(), " ")
		if err := d.persist(ctx, inv.Channel); err != nil {
			return "", err
		}
		return "Command " + name + " has been edited.", nil

	case args.Matches(argsPrefix + `del\s+\S`):
		if !state.RemoveCommand(name) {
			return "Command " + name + " does not exist.", nil
		}
		if err := d.persist(ctx, inv.Channel); err != nil {
			return "", err
		}
		return "Command " + name + " has been removed.", nil

	case args.Matches(argsPrefix + `transform\s+\S+\s+\S`):
		cmd, ok := state.Command(name)
		if !ok {
			return "Command " + name + " does not exist.", nil
		}
		kind := strings.ToLower(args.Get(2))
		transformed, ok := Transform(*cmd, kind)
		if !ok {
			return kind + " is not a valid command type.", nil
		}
		state.PutCommand(transformed)
		if err := d.persist(ctx, inv.Channel); err != nil {
			return "", err
		}
		return "Command " + name + " has been transformed to a " + kind + "-command.", nil
	}

	return "", usage("!command (add|edit|del|transform) (name) [...]")
}
