package transport

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"packsync/internal/domain"
)

// Bus is an in-process publish/subscribe fabric. Every subscriber on a topic
// receives every published message, including the publisher's own if it is
// subscribed. Delivery is asynchronous so a slow handler cannot stall
// Publish.
type Bus struct {
	mu   sync.RWMutex
	subs map[domain.Topic]map[int]func([]byte)
	next int
	log  *log.Entry
}

// NewBus builds an empty bus.
func NewBus(logger *log.Logger) *Bus {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Bus{
		subs: make(map[domain.Topic]map[int]func([]byte)),
		log:  logger.WithField("component", "transport"),
	}
}

// Publish delivers data to every current subscriber of topic. The slice is
// copied once so handlers cannot observe later mutation by the caller.
func (b *Bus) Publish(ctx context.Context, topic domain.Topic, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := append([]byte(nil), data...)

	b.mu.RLock()
	handlers := make([]func([]byte), 0, len(b.subs[topic]))
	for _, h := range b.subs[topic] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	b.log.WithFields(log.Fields{"topic": topic, "subs": len(handlers), "bytes": len(msg)}).
		Trace("publish")
	for _, h := range handlers {
		h := h
		go h(msg)
	}
	return nil
}

// Subscribe registers handler for topic. The returned cancel stops delivery;
// calling it more than once is harmless.
func (b *Bus) Subscribe(topic domain.Topic, handler func(data []byte)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]func([]byte))
	}
	id := b.next
	b.next++
	b.subs[topic][id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[topic], id)
	}, nil
}

var _ domain.Transport = (*Bus)(nil)
