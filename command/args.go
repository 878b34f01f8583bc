package command

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// Arguments — токены команды после триггера и исходная строка целиком.
type Arguments struct {
	Args []string
	Line string
}

// ParseError — нарушение контракта: Int/Float вызваны для токена, форма
// которого не была проверена через Matches.
type ParseError struct {
	Index int
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("argument %d (%q): %v", e.Index, e.Token, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse разбивает строку чата на триггер и аргументы.
func Parse(line string) (string, Arguments) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", Arguments{Line: line}
	}
	return fields[0], Arguments{Args: fields[1:], Line: line}
}

// Get возвращает i-й токен или пустую строку вне диапазона.
func (a Arguments) Get(i int) string {
	if i < 0 || i >= len(a.Args) {
		return ""
	}
	return a.Args[i]
}

// Len возвращает число токенов.
func (a Arguments) Len() int { return len(a.Args) }

// Join склеивает токены [start, end) через sep.
func (a Arguments) Join(start, end int, sep string) string {
	return strings.Join(a.Slice(start, end), sep)
}

// Slice возвращает копию токенов [start, end); границы обрезаются.
func (a Arguments) Slice(start, end int) []string {
	start = max(start, 0)
	end = min(end, len(a.Args))
	if start >= end {
		return []string{}
	}
	out := make([]string, end-start)
	copy(out, a.Args[start:end])
	return out
}

// TryInt разбирает i-й токен как целое.
func (a Arguments) TryInt(i int) (int, bool) {
	if i < 0 || i >= len(a.Args) {
		return 0, false
	}
	v, err := strconv.Atoi(a.Args[i])
	if err != nil {
		return 0, false
	}
	return v, true
}

// TryFloat разбирает i-й токен как число с плавающей точкой.
func (a Arguments) TryFloat(i int) (float64, bool) {
	if i < 0 || i >= len(a.Args) {
		return 0, false
	}
	v, err := strconv.ParseFloat(a.Args[i], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Int разбирает i-й токен и паникует с *ParseError при ошибке.
func (a Arguments) Int(i int) int {
	v, err := strconv.Atoi(a.Get(i))
	if err != nil {
		panic(&ParseError{Index: i, Token: a.Get(i), Err: err})
	}
	return v
}

// Float разбирает i-й токен и паникует с *ParseError при ошибке.
func (a Arguments) Float(i int) float64 {
	v, err := strconv.ParseFloat(a.Get(i), 64)
	if err != nil {
		panic(&ParseError{Index: i, Token: a.Get(i), Err: err})
	}
	return v
}

// Matches проверяет строку целиком (вместе с триггером) на совпадение
// с регулярным выражением без учёта регистра.
func (a Arguments) Matches(pattern string) bool {
	return compile(pattern).MatchString(a.Line)
}

var patterns sync.Map

func compile(pattern string) *regexp.Regexp {
	if re, ok := patterns.Load(pattern); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile("(?i)" + pattern)
	patterns.Store(pattern, re)
	return re
}
