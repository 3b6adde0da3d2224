package redisbus

import (
	"testing"
	"time"

	"shiptrack/internal/core/domain/model/kernel"
	"shiptrack/internal/core/domain/model/shipment"
	"shiptrack/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	ev, err := shipment.RestoreStatusEvent(42, shipment.InTransit, at, 1)
	require.NoError(t, err)
	origin := kernel.NewUUID()

	raw, err := encode(ports.RelayMessage{Origin: origin, Event: ev})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"origin":"`+origin.String()+`","shipmentId":42,"status":"InTransit","sequence":1,"timestamp":"2025-03-01T10:00:00Z"}`,
		string(raw))

	msg, err := decode(raw)
	require.NoError(t, err)
	assert.True(t, origin.IsEqual(msg.Origin))
	assert.Equal(t, ev.ShipmentID(), msg.Event.ShipmentID())
	assert.Equal(t, ev.Status(), msg.Event.Status())
	assert.Equal(t, ev.Sequence(), msg.Event.Sequence())
	assert.True(t, at.Equal(msg.Event.Timestamp()))
}

func TestDecode_RejectsInvalidPayloads(t *testing.T) {
	origin := kernel.NewUUID().String()
	for name, payload := range map[string]string{
		"not json":       `{`,
		"bad origin":     `{"origin":"nope","shipmentId":1,"status":"InTransit","sequence":1}`,
		"zero shipment":  `{"origin":"` + origin + `","shipmentId":0,"status":"InTransit","sequence":1}`,
		"unknown status": `{"origin":"` + origin + `","shipmentId":1,"status":"Lost","sequence":1}`,
		"zero sequence":  `{"origin":"` + origin + `","shipmentId":1,"status":"InTransit","sequence":0}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := decode([]byte(payload))
			assert.Error(t, err)
		})
	}
}
