package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/zmap/castgrab2/castproto"
)

type pingMessage struct {
	Type string `json:"type"`
}

// Ping exchanges a PING/PONG heartbeat with the device, returning the
// round-trip latency on success. This is the Go analogue of
// castDevicePing: send PING on the heartbeat namespace, then wait for a
// JSON reply whose "type" field reads PONG.
func (c *Connection) Ping(timeout time.Duration) (time.Duration, error) {
	if err := c.requireState("Ping", stateConnected); err != nil {
		return 0, err
	}

	frame, err := castproto.Encode(castproto.Envelope{
		Version:       castproto.ProtocolVersion,
		SourceID:      castproto.GlobalSenderID,
		DestinationID: castproto.GlobalReceiverID,
		Namespace:     castproto.NamespaceHeartbeat,
		PayloadType:   castproto.PayloadString,
		Payload:       []byte(`{"type": "PING"}`),
	})
	if err != nil {
		return 0, fmt.Errorf("session: encoding PING: %w", err)
	}

	start := time.Now()
	if _, err := c.conn.Write(frame); err != nil {
		return 0, fmt.Errorf("session: sending PING: %w", err)
	}

	env, err := receiveUntil(c, filter{
		Namespace:   castproto.NamespaceHeartbeat,
		PayloadType: castproto.PayloadString,
	}, timeout)
	if err != nil {
		return 0, err
	}
	elapsed := time.Since(start)

	var msg pingMessage
	if err := json.Unmarshal(env.Payload, &msg); err != nil {
		return 0, fmt.Errorf("session: decoding PONG: %w", err)
	}
	if msg.Type != "PONG" {
		return 0, fmt.Errorf("session: expected PONG, got %q", msg.Type)
	}

	return elapsed, nil
}
