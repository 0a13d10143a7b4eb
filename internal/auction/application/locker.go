package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// keyedLocker hands out one mutex per auction ID. Slots are created on demand and dropped once
// nobody holds or waits for them, so idle auctions cost nothing.
type keyedLocker struct {
	mu    sync.Mutex
	slots map[uuid.UUID]*lockSlot
}

type lockSlot struct {
	token chan struct{}
	refs  int
}

func newKeyedLocker() *keyedLocker {
	return &keyedLocker{slots: make(map[uuid.UUID]*lockSlot)}
}

// Lock blocks until the auction's lock is held or ctx is done. The returned func releases it and
// is safe to call more than once.
func (l *keyedLocker) Lock(ctx context.Context, id uuid.UUID) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[id]
	if !ok {
		slot = &lockSlot{token: make(chan struct{}, 1)}
		l.slots[id] = slot
	}
	slot.refs++
	l.mu.Unlock()

	select {
	case slot.token <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-slot.token
				l.release(id, slot)
			})
		}, nil
	case <-ctx.Done():
		l.release(id, slot)
		return nil, fmt.Errorf("acquire lock for auction %s: %w", id, ctx.Err())
	}
}

func (l *keyedLocker) release(id uuid.UUID, slot *lockSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, id)
	}
}

func (l *keyedLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}
