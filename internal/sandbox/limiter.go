package sandbox

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrLimiterClosed = errors.New("sandbox limiter is closed")
)

// Limiter bounds the number of execution units in flight. Slots are
// admission tickets only; units are never reused.
type Limiter struct {
	slots  chan struct{}
	size   int
	mu     sync.RWMutex
	closed bool
}

// NewLimiter creates a limiter with size slots
func NewLimiter(size int) *Limiter {
	if size <= 0 {
		size = 4
	}

	l := &Limiter{
		slots: make(chan struct{}, size),
		size:  size,
	}
	for i := 0; i < size; i++ {
		l.slots <- struct{}{}
	}
	return l
}

// Acquire waits for a free slot. The returned release func must be called
// exactly once; extra calls are ignored.
func (l *Limiter) Acquire(ctx context.Context) (func(), error) {
	l.mu.RLock()
	if l.closed {
		l.mu.RUnlock()
		return nil, ErrLimiterClosed
	}
	slots := l.slots
	l.mu.RUnlock()

	select {
	case _, ok := <-slots:
		if !ok {
			return nil, ErrLimiterClosed
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.RLock()
			defer l.mu.RUnlock()
			if !l.closed {
				slots <- struct{}{}
			}
		})
	}, nil
}

// Close rejects further acquisitions and wakes waiters
func (l *Limiter) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	close(l.slots)
	return nil
}

// Stats returns limiter statistics
func (l *Limiter) Stats() map[string]interface{} {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return map[string]interface{}{
		"size":      l.size,
		"available": len(l.slots),
		"in_use":    l.size - len(l.slots),
		"closed":    l.closed,
	}
}
