package model

import "time"

// ChatMessage — нормализованная модель сообщения чата Twitch.
type ChatMessage struct {
	ID            string
	Channel       string
	UserID        string
	Username      string
	DisplayName   string
	Text          string
	Badges        map[string]int
	IsMod         bool
	IsBroadcaster bool
	IsSubscriber  bool
	SentAt        time.Time
}

// CommandLog — запись журнала обработанных команд.
type CommandLog struct {
	MessageID string
	Channel   string
	UserID    string
	Username  string
	Trigger   string
	Args      string
	Reply     string
	HandledAt time.Time
}
