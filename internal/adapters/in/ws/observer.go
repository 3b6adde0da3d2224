package ws

import (
	"sync"
	"sync/atomic"
	"time"

	"shiptrack/internal/core/domain/model/kernel"
	"shiptrack/internal/core/domain/model/shipment"
	"shiptrack/internal/core/ports"

	"github.com/gorilla/websocket"
)

var _ ports.Observer = (*Observer)(nil)

// Observer is one websocket client. Outbound frames go through a bounded queue
// drained by the connection's writer goroutine.
type Observer struct {
	id       kernel.UUID
	conn     *websocket.Conn
	send     chan []byte
	done     chan struct{}
	once     sync.Once
	lastSeen atomic.Int64
}

func newObserver(conn *websocket.Conn, queueSize int, now time.Time) *Observer {
	o := &Observer{
		id:   kernel.NewUUID(),
		conn: conn,
		send: make(chan []byte, queueSize),
		done: make(chan struct{}),
	}
	o.touch(now)
	return o
}

func (o *Observer) ID() kernel.UUID { return o.id }

// Deliver queues a statusUpdated frame. It fails with ports.ErrObserverLagging
// when the queue is full.
func (o *Observer) Deliver(ev shipment.StatusEvent) error {
	frame, err := encodeStatusUpdated(ev)
	if err != nil {
		return err
	}
	return o.enqueue(frame)
}

func (o *Observer) LastSeen() time.Time {
	return time.Unix(0, o.lastSeen.Load())
}

// Close stops the writer, which sends a close frame and drops the connection.
func (o *Observer) Close() {
	o.once.Do(func() { close(o.done) })
}

func (o *Observer) enqueue(frame []byte) error {
	select {
	case <-o.done:
		return ports.ErrObserverClosed
	default:
	}
	select {
	case o.send <- frame:
		return nil
	default:
		return ports.ErrObserverLagging
	}
}

func (o *Observer) touch(now time.Time) {
	o.lastSeen.Store(now.UnixNano())
}
