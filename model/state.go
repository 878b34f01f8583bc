package model

import (
	"slices"
	"strings"
)

// CommandKind — тег варианта пользовательской команды.
type CommandKind string

const (
	KindText     CommandKind = "text"
	KindCounter  CommandKind = "counter"
	KindFraction CommandKind = "fraction"
	KindTimer    CommandKind = "timer"
)

// CustomCommand — сохраняемая запись пользовательской команды.
// Числовые поля имеют смысл только для соответствующего Kind.
type CustomCommand struct {
	Name        string      `json:"name"`
	Message     string      `json:"message"`
	Kind        CommandKind `json:"type"`
	Counter     int         `json:"counter,omitempty"`
	Numerator   int         `json:"numerator,omitempty"`
	Denominator int         `json:"denominator,omitempty"`
	Interval    int         `json:"interval,omitempty"`
}

// Quote — цитата из чата.
type Quote struct {
	Quotee  string `json:"quotee"`
	Message string `json:"message"`
}

// Settings — скалярные настройки канала.
type Settings struct {
	SlotsEmotes int `json:"slots_emotes"`
}

// ChannelState — всё изменяемое состояние одного канала.
// Commands хранятся в порядке добавления, имена в нижнем регистре.
type ChannelState struct {
	Commands []CustomCommand `json:"commands"`
	Quotes   []Quote         `json:"quotes"`
	Settings Settings        `json:"settings"`
}

// NewChannelState создаёт пустое состояние с заданным размером пула эмоутов.
func NewChannelState(slotsEmotes int) *ChannelState {
	return &ChannelState{
		Commands: []CustomCommand{},
		Quotes:   []Quote{},
		Settings: Settings{SlotsEmotes: slotsEmotes},
	}
}

// Clone возвращает независимую копию состояния.
func (s *ChannelState) Clone() *ChannelState {
	return &ChannelState{
		Commands: slices.Clone(s.Commands),
		Quotes:   slices.Clone(s.Quotes),
		Settings: s.Settings,
	}
}

// Command ищет пользовательскую команду без учёта регистра.
func (s *ChannelState) Command(name string) (*CustomCommand, bool) {
	i := s.commandIndex(name)
	if i < 0 {
		return nil, false
	}
	return &s.Commands[i], true
}

// PutCommand добавляет команду или заменяет существующую на том же месте.
func (s *ChannelState) PutCommand(cmd CustomCommand) {
	cmd.Name = strings.ToLower(cmd.Name)
	if i := s.commandIndex(cmd.Name); i >= 0 {
		s.Commands[i] = cmd
		return
	}
	s.Commands = append(s.Commands, cmd)
}

// RemoveCommand удаляет команду; false, если её не было.
func (s *ChannelState) RemoveCommand(name string) bool {
	i := s.commandIndex(name)
	if i < 0 {
		return false
	}
	s.Commands = append(s.Commands[:i], s.Commands[i+1:]...)
	return true
}

func (s *ChannelState) commandIndex(name string) int {
	for i := range s.Commands {
		if strings.EqualFold(s.Commands[i].Name, name) {
			return i
		}
	}
	return -1
}
