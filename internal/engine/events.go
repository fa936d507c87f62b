package engine

import (
	"sync"
	"time"
)

type Topic string

const (
	TopicHabits   Topic = "habits"
	TopicProgress Topic = "progress"
	TopicTokens   Topic = "tokens"
	TopicSettings Topic = "settings"
)

// AllTopics lists every notification the engine emits.
var AllTopics = []Topic{TopicHabits, TopicProgress, TopicTokens, TopicSettings}

type Event struct {
	Topic Topic
	User  string
	At    time.Time
}

type subscriber struct {
	fn     func(Event)
	topics map[Topic]bool
}

// Bus fans engine notifications out to subscribers. Handlers run on the
// publishing goroutine after the engine has released its lock.
type Bus struct {
	mu   sync.RWMutex
	next int
	subs map[int]subscriber
}

func NewBus() *Bus {
	return &Bus{subs: map[int]subscriber{}}
}

// Subscribe registers fn for the given topics, or all topics when none are
// given. The returned func removes the subscription.
func (b *Bus) Subscribe(fn func(Event), topics ...Topic) func() {
	if len(topics) == 0 {
		topics = AllTopics
	}
	set := make(map[Topic]bool, len(topics))
	for _, t := range topics {
		set[t] = true
	}

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = subscriber{fn: fn, topics: set}
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	var fns []func(Event)
	for _, s := range b.subs {
		if s.topics[e.Topic] {
			fns = append(fns, s.fn)
		}
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(e)
	}
}
