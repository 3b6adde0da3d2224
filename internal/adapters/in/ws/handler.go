// Package ws serves the websocket channel through which observers follow shipment
// status changes.
package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"shiptrack/internal/core/domain/model/kernel"
	"shiptrack/internal/core/ports"
	"shiptrack/internal/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	defaultQueueSize    = 64
	defaultPingInterval = 30 * time.Second
	writeTimeout        = 10 * time.Second
	maxMessageSize      = 4 << 10
)

// Registry is the part of the subscription registry the channel drives.
type Registry interface {
	Subscribe(id kernel.ShipmentID, observer ports.Observer) error
	Unsubscribe(id kernel.ShipmentID, observer ports.Observer)
	UnsubscribeAll(observer ports.Observer) int
}

type Option func(*Handler)

// WithQueueSize bounds each observer's outbound queue.
func WithQueueSize(n int) Option {
	return func(h *Handler) {
		if n > 0 {
			h.queueSize = n
		}
	}
}

// WithPingInterval sets how often the server pings. A client that answers
// neither pings nor sends anything for two intervals is disconnected.
func WithPingInterval(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.pingInterval = d
		}
	}
}

// WithCheckOrigin replaces the same-origin check of the upgrader.
func WithCheckOrigin(check func(r *http.Request) bool) Option {
	return func(h *Handler) {
		h.upgrader.CheckOrigin = check
	}
}

type Handler struct {
	registry     Registry
	upgrader     websocket.Upgrader
	queueSize    int
	pingInterval time.Duration
	now          func() time.Time
	log          *logger.Logger
}

func NewHandler(registry Registry, log *logger.Logger, opts ...Option) *Handler {
	h := &Handler{
		registry:     registry,
		queueSize:    defaultQueueSize,
		pingInterval: defaultPingInterval,
		now:          time.Now,
		log:          log.Named("ws"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Serve upgrades the request and runs the connection until either side closes it.
// All subscriptions of the connection are dropped when it ends.
func (h *Handler) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return nil
	}

	o := newObserver(conn, h.queueSize, h.now())
	log := h.log.With("observer_id", o.ID().String())
	log.Debug("observer connected", "remote", c.RealIP())

	written := make(chan struct{})
	go func() {
		defer close(written)
		h.write(o)
	}()

	err = h.read(o)
	n := h.registry.UnsubscribeAll(o)
	o.Close()
	<-written

	if err != nil {
		log.Warn("observer read failed", "error", err)
	}
	log.Debug("observer disconnected", "subscriptions", n)
	return nil
}

func (h *Handler) read(o *Observer) error {
	pongWait := 2 * h.pingInterval
	o.conn.SetReadLimit(maxMessageSize)
	_ = o.conn.SetReadDeadline(h.now().Add(pongWait))
	o.conn.SetPongHandler(func(string) error {
		o.touch(h.now())
		return o.conn.SetReadDeadline(h.now().Add(pongWait))
	})

	for {
		op, data, err := o.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				return nil
			}
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) || isClosing(o) {
				return nil
			}
			return err
		}
		o.touch(h.now())
		_ = o.conn.SetReadDeadline(h.now().Add(pongWait))

		if op != websocket.TextMessage {
			h.reply(o, invalidInput("expected a text message"))
			continue
		}
		h.dispatch(o, data)
	}
}

func (h *Handler) dispatch(o *Observer, data []byte) {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		h.reply(o, invalidInput(err.Error()))
		return
	}

	switch msg.Type {
	case TypeSubscribe, TypeSubscribeShipment, TypeUnsubscribe:
	default:
		h.reply(o, invalidInput("unknown message type "+strconv.Quote(msg.Type)))
		return
	}

	id, err := kernel.NewShipmentID(int64(msg.ShipmentID))
	if err != nil {
		h.reply(o, invalidInput(err.Error()))
		return
	}

	if msg.Type == TypeUnsubscribe {
		h.registry.Unsubscribe(id, o)
		h.reply(o, ackMessage{Type: TypeUnsubscribed, ShipmentID: id.Int64()})
		return
	}
	if err = h.registry.Subscribe(id, o); err != nil {
		h.reply(o, errorMessage{Type: TypeError, Code: "Unavailable", Message: err.Error()})
		return
	}
	h.reply(o, ackMessage{Type: TypeSubscribed, ShipmentID: id.Int64()})
}

func invalidInput(message string) errorMessage {
	return errorMessage{Type: TypeError, Code: "InvalidInput", Message: message}
}

func (h *Handler) reply(o *Observer, msg any) {
	frame, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("encode reply", "error", err)
		return
	}
	if err = o.enqueue(frame); errors.Is(err, ports.ErrObserverLagging) {
		h.log.Warn("reply dropped, observer is lagging", "observer_id", o.ID().String())
		o.Close()
	}
}

// write owns all writes to the connection. It returns after Close, or on the
// first write failure, having closed the connection.
func (h *Handler) write(o *Observer) {
	ticker := time.NewTicker(h.pingInterval)
	defer func() {
		ticker.Stop()
		_ = o.conn.Close()
	}()

	for {
		select {
		case frame := <-o.send:
			_ = o.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := o.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				o.Close()
				return
			}
		case <-ticker.C:
			_ = o.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := o.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				o.Close()
				return
			}
		case <-o.done:
			_ = o.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeTimeout))
			return
		}
	}
}

func isClosing(o *Observer) bool {
	select {
	case <-o.done:
		return true
	default:
		return false
	}
}
