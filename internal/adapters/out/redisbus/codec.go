package redisbus

import (
	"encoding/json"
	"fmt"
	"time"

	"shiptrack/internal/core/domain/model/kernel"
	"shiptrack/internal/core/domain/model/shipment"
	"shiptrack/internal/core/ports"
)

// wireMessage is the JSON payload published on the channel.
type wireMessage struct {
	Origin     string          `json:"origin"`
	ShipmentID int64           `json:"shipmentId"`
	Status     shipment.Status `json:"status"`
	Sequence   int64           `json:"sequence"`
	Timestamp  time.Time       `json:"timestamp"`
}

func encode(msg ports.RelayMessage) ([]byte, error) {
	return json.Marshal(wireMessage{
		Origin:     msg.Origin.String(),
		ShipmentID: msg.Event.ShipmentID().Int64(),
		Status:     msg.Event.Status(),
		Sequence:   msg.Event.Sequence(),
		Timestamp:  msg.Event.Timestamp(),
	})
}

func decode(raw []byte) (ports.RelayMessage, error) {
	var w wireMessage
	if err := json.Unmarshal(raw, &w); err != nil {
		return ports.RelayMessage{}, err
	}

	origin, err := kernel.UUIDFromString(w.Origin)
	if err != nil {
		return ports.RelayMessage{}, fmt.Errorf("origin: %w", err)
	}
	ev, err := shipment.RestoreStatusEvent(kernel.ShipmentID(w.ShipmentID), w.Status, w.Timestamp, w.Sequence)
	if err != nil {
		return ports.RelayMessage{}, err
	}
	return ports.RelayMessage{Origin: origin, Event: ev}, nil
}
