package command

import "math/rand/v2"

// Random — источник равномерной случайности. IntN возвращает число в [0, n).
type Random interface {
	IntN(n int) int
}

type defaultRandom struct{}

func (defaultRandom) IntN(n int) int { return rand.IntN(n) }

// NewRandom возвращает источник на базе math/rand/v2.
func NewRandom() Random { return defaultRandom{} }

// Choice выбирает случайный элемент; для пустого среза — нулевое значение.
func Choice[T any](rnd Random, items []T) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	return items[rnd.IntN(len(items))]
}

// Sample выбирает k различных элементов без возвращения.
func Sample[T any](rnd Random, items []T, k int) []T {
	pool := append([]T(nil), items...)
	k = min(max(k, 0), len(pool))
	for i := 0; i < k; i++ {
		j := i + rnd.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}
