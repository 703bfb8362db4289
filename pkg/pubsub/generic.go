package pubsub

import (
	"sync"
)

const DefaultBufferSize = 8

// PubSub fans values out to the subscribers of a topic. Publish never blocks:
// when a subscriber falls behind its oldest pending value is dropped, so a
// slow reader always ends up with the latest one.
type PubSub[T any] struct {
	mu         sync.Mutex
	subs       map[string]map[int]chan T
	nextID     int
	bufferSize int
}

func NewPubSub[T any](bufferSize int) *PubSub[T] {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &PubSub[T]{
		subs:       make(map[string]map[int]chan T),
		bufferSize: bufferSize,
	}
}

// Subscribe returns the channel for topic and a function that removes the
// subscription and closes the channel.
func (ps *PubSub[T]) Subscribe(topic string) (<-chan T, func()) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ch := make(chan T, ps.bufferSize)
	id := ps.nextID
	ps.nextID++
	if ps.subs[topic] == nil {
		ps.subs[topic] = make(map[int]chan T)
	}
	ps.subs[topic][id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() { ps.unsubscribe(topic, id) })
	}
}

func (ps *PubSub[T]) unsubscribe(topic string, id int) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ch, ok := ps.subs[topic][id]; ok {
		delete(ps.subs[topic], id)
		close(ch)
	}
	if len(ps.subs[topic]) == 0 {
		delete(ps.subs, topic)
	}
}

func (ps *PubSub[T]) Publish(topic string, data T) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	for _, ch := range ps.subs[topic] {
		for {
			select {
			case ch <- data:
			default:
				// full: drop the oldest pending value and retry
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

// Close drops every subscription of topic.
func (ps *PubSub[T]) Close(topic string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	for id, ch := range ps.subs[topic] {
		delete(ps.subs[topic], id)
		close(ch)
	}
	delete(ps.subs, topic)
}

func (ps *PubSub[T]) Subscribers(topic string) int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return len(ps.subs[topic])
}
