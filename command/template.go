package command

import "strings"

// Vars — значения для подстановки в шаблон.
// Values обслуживает %name%, Funcs — %key=argument%.
type Vars struct {
	Values map[string]string
	Funcs  map[string]func(argument string) string
}

type scanState int

const (
	seekingPercent scanState = iota
	readingKey
	readingArgument
)

// Render подставляет плейсхолдеры за один проход слева направо.
// Подставленный текст повторно не сканируется. Простые плейсхолдеры внутри
// аргумента (%rand=%author% wins|%author% loses%) подставляются до вызова
// функции. Неизвестные и незакрытые плейсхолдеры остаются как есть.
func Render(template string, vars Vars) string {
	var (
		out      strings.Builder
		arg      strings.Builder
		fn       func(string) string
		state    = seekingPercent
		start    int // позиция открывающего '%'
		keyEnd   int // позиция '='
		position int
	)

	for position < len(template) {
		c := template[position]

		switch state {
		case seekingPercent:
			if c == '%' {
				start = position
				state = readingKey
			} else {
				out.WriteByte(c)
			}
			position++

		case readingKey:
			switch {
			case isKeyChar(c):
				position++
			case c == '%' && position > start+1:
				key := template[start+1 : position]
				if v, ok := vars.Values[key]; ok {
					out.WriteString(v)
					position++
				} else {
					// закрывающий '%' может открывать следующий плейсхолдер
					out.WriteString(template[start:position])
				}
				state = seekingPercent
			case c == '=' && position > start+1:
				f, ok := vars.Funcs[template[start+1:position]]
				position++
				if !ok {
					out.WriteString(template[start:position])
					state = seekingPercent
					continue
				}
				fn = f
				keyEnd = position - 1
				arg.Reset()
				state = readingArgument
			default:
				out.WriteString(template[start:position])
				state = seekingPercent
			}

		case readingArgument:
			if c != '%' {
				arg.WriteByte(c)
				position++
				continue
			}
			if value, next, ok := nestedValue(template, position, vars.Values); ok {
				arg.WriteString(value)
				position = next
				continue
			}
			out.WriteString(fn(arg.String()))
			state = seekingPercent
			position++
		}
	}

	switch state {
	case readingKey:
		out.WriteString(template[start:])
	case readingArgument:
		out.WriteString(template[start : keyEnd+1])
		out.WriteString(arg.String())
	}

	return out.String()
}

// nestedValue распознаёт известный простой плейсхолдер, начинающийся в
// позиции at, и возвращает его значение и позицию после закрывающего '%'.
func nestedValue(template string, at int, values map[string]string) (string, int, bool) {
	end := at + 1
	for end < len(template) && isKeyChar(template[end]) {
		end++
	}
	if end == at+1 || end >= len(template) || template[end] != '%' {
		return "", 0, false
	}
	v, ok := values[template[at+1:end]]
	return v, end + 1, ok
}

func isKeyChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-'
}

// RandFunc реализует %rand=a|b|c%.
func RandFunc(rnd Random) func(string) string {
	return func(argument string) string {
		return Choice(rnd, strings.Split(argument, "|"))
	}
}
