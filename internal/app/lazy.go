package app

import "sync"

// lazy memoizes the first outcome of a constructor. A failed construction is
// remembered too, so every caller sees the same error.
type lazy[T any] struct {
	mu   sync.Mutex
	done bool
	val  T
	err  error
}

func (l *lazy[T]) get(build func() (T, error)) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.done {
		l.val, l.err = build()
		l.done = true
	}
	return l.val, l.err
}

// peek returns the value only if it was built successfully.
func (l *lazy[T]) peek() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.val, l.done && l.err == nil
}
