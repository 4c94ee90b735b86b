package services

import "sync"

// notifier fans controller state snapshots out to observers. Delivery is
// best-effort latest-wins: a slow observer loses intermediate snapshots but
// always receives the most recent one. Same contract as the settings store
// subscriptions.
type notifier[T any] struct {
	mu     sync.Mutex
	subs   map[int]chan T
	nextID int
}

func newNotifier[T any]() *notifier[T] {
	return &notifier[T]{subs: make(map[int]chan T)}
}

// Subscribe registers an observer. The returned func cancels the
// subscription and closes the channel.
func (n *notifier[T]) Subscribe() (<-chan T, func()) {
	ch := make(chan T, 16)

	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.subs[id] = ch
	n.mu.Unlock()

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if c, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

func (n *notifier[T]) publish(v T) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		for {
			select {
			case ch <- v:
			default:
				select {
				case <-ch:
				default:
				}
				continue
			}
			break
		}
	}
}
