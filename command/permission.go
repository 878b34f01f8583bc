package command

import "twitch-chat-bot/model"

// Permission — упорядоченный уровень прав автора сообщения.
type Permission int

const (
	Viewer Permission = iota
	Subscriber
	Moderator
	Broadcaster
)

func (p Permission) String() string {
	switch p {
	case Subscriber:
		return "subscriber"
	case Moderator:
		return "moderator"
	case Broadcaster:
		return "broadcaster"
	default:
		return "viewer"
	}
}

// PermissionOf определяет уровень прав по флагам сообщения.
func PermissionOf(msg model.ChatMessage) Permission {
	switch {
	case msg.IsBroadcaster:
		return Broadcaster
	case msg.IsMod:
		return Moderator
	case msg.IsSubscriber:
		return Subscriber
	default:
		return Viewer
	}
}
