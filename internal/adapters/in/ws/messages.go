package ws

import (
	"bytes"
	"encoding/json"
	"time"

	"shiptrack/internal/core/domain/model/kernel"
	"shiptrack/internal/core/domain/model/shipment"
)

// Message types exchanged over the observer channel.
const (
	TypeSubscribe         = "subscribe"
	TypeSubscribeShipment = "subscribeShipment" // legacy alias of subscribe
	TypeUnsubscribe       = "unsubscribe"

	TypeSubscribed    = "subscribed"
	TypeUnsubscribed  = "unsubscribed"
	TypeStatusUpdated = "statusUpdated"
	TypeError         = "error"
)

// shipmentRef accepts the shipment id as a JSON number or a numeric string.
type shipmentRef int64

func (r *shipmentRef) UnmarshalJSON(data []byte) error {
	id, err := kernel.ParseShipmentID(string(bytes.Trim(data, `"`)))
	if err != nil {
		return err
	}
	*r = shipmentRef(id)
	return nil
}

type clientMessage struct {
	Type       string      `json:"type"`
	ShipmentID shipmentRef `json:"shipmentId"`
}

type ackMessage struct {
	Type       string `json:"type"`
	ShipmentID int64  `json:"shipmentId"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"error"`
}

type statusUpdatedMessage struct {
	Type       string    `json:"type"`
	ShipmentID int64     `json:"shipmentId"`
	NewStatus  string    `json:"newStatus"`
	Sequence   int64     `json:"sequence"`
	Timestamp  time.Time `json:"timestamp"`
}

func encodeStatusUpdated(ev shipment.StatusEvent) ([]byte, error) {
	return json.Marshal(statusUpdatedMessage{
		Type:       TypeStatusUpdated,
		ShipmentID: ev.ShipmentID().Int64(),
		NewStatus:  ev.Status().String(),
		Sequence:   ev.Sequence(),
		Timestamp:  ev.Timestamp(),
	})
}
