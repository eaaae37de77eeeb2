package session

import "github.com/zmap/castgrab2/castproto"

// Close sends a best-effort CLOSE notification — no response is awaited or
// expected, matching the original castDeviceClose, which fires the message
// and tears the socket down regardless of whether the send succeeds — and
// releases the underlying transport.
func (c *Connection) Close() error {
	if c.state == stateClosed {
		return nil
	}

	frame, err := castproto.Encode(castproto.Envelope{
		Version:       castproto.ProtocolVersion,
		SourceID:      castproto.GlobalSenderID,
		DestinationID: castproto.GlobalReceiverID,
		Namespace:     castproto.NamespaceConnection,
		PayloadType:   castproto.PayloadString,
		Payload:       []byte(`{"type": "CLOSE"}`),
	})
	if err == nil {
		c.conn.Write(frame)
	}

	c.state = stateClosed
	return c.conn.Close()
}
