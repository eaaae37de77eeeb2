package session

import (
	"fmt"
	"time"

	"github.com/zmap/castgrab2"
	"github.com/zmap/castgrab2/castproto"
)

// DeviceAuth exchanges the tp.deviceauth authenticity challenge with the
// device using the named registered castgrab2.AuthProvider, returning the
// raw response payload. No signature generator ships by default — this
// stays a thin relay over whatever provider the caller registered.
func (c *Connection) DeviceAuth(providerName string, challenge []byte, timeout time.Duration) ([]byte, error) {
	if err := c.requireState("DeviceAuth", stateConnected); err != nil {
		return nil, err
	}

	provider, ok := castgrab2.LookupAuthProvider(providerName)
	if !ok {
		return nil, fmt.Errorf("session: no auth provider registered as %q", providerName)
	}
	signed, err := provider.Respond(challenge)
	if err != nil {
		return nil, fmt.Errorf("session: auth provider %q: %w", providerName, err)
	}

	frame, err := castproto.Encode(castproto.Envelope{
		Version:       castproto.ProtocolVersion,
		SourceID:      castproto.GlobalSenderID,
		DestinationID: castproto.GlobalReceiverID,
		Namespace:     castproto.NamespaceDeviceAuth,
		PayloadType:   castproto.PayloadBinary,
		Payload:       signed,
	})
	if err != nil {
		return nil, fmt.Errorf("session: framing device auth response: %w", err)
	}
	if _, err := c.conn.Write(frame); err != nil {
		return nil, fmt.Errorf("session: sending device auth response: %w", err)
	}

	env, err := receiveUntil(c, filter{
		Namespace:   castproto.NamespaceDeviceAuth,
		PayloadType: castproto.PayloadBinary,
	}, timeout)
	if err != nil {
		return nil, err
	}

	return env.Payload, nil
}
