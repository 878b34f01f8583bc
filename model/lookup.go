package model

import (
	"errors"
	"time"
)

// ErrNotFound возвращается внешними источниками, когда объект не существует.
var ErrNotFound = errors.New("not found")

// Stream описывает активную трансляцию канала.
type Stream struct {
	UserLogin string
	Title     string
	StartedAt time.Time
}

// Game — игра на speedrun.com.
type Game struct {
	ID   string
	Name string
}

// Category — категория забегов игры.
type Category struct {
	ID   string
	Name string
}

// Run — забег, занимающий место в таблице лидеров.
type Run struct {
	Place     int
	Player    string
	Time      time.Duration
	VideoLink string
}
