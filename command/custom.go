package command

import (
	"strconv"
	"strings"

	"twitch-chat-bot/model"
)

// Execute выполняет пользовательскую команду: при наличии аргументов и прав
// модератора применяет изменение состояния варианта, затем рендерит шаблон.
// mutated сообщает, что запись изменилась и её нужно сохранить.
func Execute(cmd *model.CustomCommand, inv *Invocation, rnd Random) (reply string, mutated bool) {
	args := inv.Args
	privileged := args.Len() > 0 && inv.Permission >= Moderator

	if privileged {
		switch cmd.Kind {
		case model.KindCounter:
			if v, ok := args.TryInt(0); ok {
				cmd.Counter = v
			} else {
				cmd.Counter += strings.Count(args.Get(0), "+") - strings.Count(args.Get(0), "-")
			}
			mutated = true

		case model.KindFraction:
			switch {
			case args.Matches(argsPrefix + `setnumerator\s+\d{1,9}(\s|$)`):
				cmd.Numerator = args.Int(1)
			case args.Matches(argsPrefix + `setdenominator\s+\d{1,9}(\s|$)`):
				cmd.Denominator = args.Int(1)
			default:
				plus := strings.Count(args.Get(0), "+")
				minus := strings.Count(args.Get(0), "-")
				cmd.Numerator += plus
				cmd.Denominator += plus + minus
			}
			mutated = true

		case model.KindTimer:
			if v, ok := args.TryInt(0); ok {
				cmd.Interval = v
				return "The interval of the timer-command " + cmd.Name + " has been set to " + strconv.Itoa(v) + " seconds.", true
			}
		}
	}

	return RenderCommand(cmd, inv.Author, args, rnd), mutated
}

// RenderCommand подставляет в шаблон команды автора, аргументы и поля варианта.
func RenderCommand(cmd *model.CustomCommand, author string, args Arguments, rnd Random) string {
	values := map[string]string{
		"author": author,
		"args":   args.Join(0, args.Len(), " "),
	}

	switch cmd.Kind {
	case model.KindCounter:
		values["counter"] = strconv.Itoa(cmd.Counter)
	case model.KindFraction:
		values["numerator"] = strconv.Itoa(cmd.Numerator)
		values["denominator"] = strconv.Itoa(cmd.Denominator)
		values["fraction"] = fractionPercent(cmd.Numerator, cmd.Denominator)
	case model.KindTimer:
		values["interval"] = strconv.Itoa(cmd.Interval)
	}

	return Render(cmd.Message, Vars{
		Values: values,
		Funcs:  map[string]func(string) string{"rand": RandFunc(rnd)},
	})
}

func fractionPercent(numerator, denominator int) string {
	if denominator == 0 {
		return "0"
	}
	p := float32(numerator) / float32(denominator) * 100
	return strconv.FormatFloat(float64(p), 'f', -1, 32)
}

// Transform пересобирает команду как вариант kind, сохраняя имя и шаблон
// и обнуляя числовое состояние. Для неизвестного kind возвращает false.
func Transform(cmd model.CustomCommand, kind string) (model.CustomCommand, bool) {
	switch k := model.CommandKind(strings.ToLower(kind)); k {
	case model.KindText, model.KindCounter, model.KindFraction, model.KindTimer:
		return model.CustomCommand{Name: cmd.Name, Message: cmd.Message, Kind: k}, true
	default:
		return cmd, false
	}
}
