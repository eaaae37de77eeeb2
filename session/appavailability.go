package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/zmap/castgrab2/castproto"
)

const (
	availStatusAvailable   = "APP_AVAILABLE"
	availStatusUnavailable = "APP_UNAVAILABLE"
	availResponseType      = "GET_APP_AVAILABILITY"
)

type appAvailabilityRequest struct {
	Type      string   `json:"type"`
	AppID     []string `json:"appId"`
	RequestID int32    `json:"requestId"`
}

type appAvailabilityResponse struct {
	ResponseType string            `json:"responseType"`
	RequestID    int32             `json:"requestId"`
	Availability map[string]string `json:"availability"`
}

// AppAvailable queries whether appID is available on the connected device,
// correlating the reply by request id and responseType exactly as the
// original's parseAvailabilityResponse validated before trusting the
// availability map.
func (c *Connection) AppAvailable(appID string, timeout time.Duration) (bool, error) {
	if err := c.requireState("AppAvailable", stateConnected); err != nil {
		return false, err
	}

	reqID := c.nextRequestID()
	req := appAvailabilityRequest{
		Type:      "GET_APP_AVAILABILITY",
		AppID:     []string{appID},
		RequestID: reqID,
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return false, fmt.Errorf("session: encoding GET_APP_AVAILABILITY: %w", err)
	}

	frame, err := castproto.Encode(castproto.Envelope{
		Version:       castproto.ProtocolVersion,
		SourceID:      castproto.GlobalSenderID,
		DestinationID: castproto.GlobalReceiverID,
		Namespace:     castproto.NamespaceReceiver,
		PayloadType:   castproto.PayloadString,
		Payload:       payload,
	})
	if err != nil {
		return false, fmt.Errorf("session: framing GET_APP_AVAILABILITY: %w", err)
	}
	if _, err := c.conn.Write(frame); err != nil {
		return false, fmt.Errorf("session: sending GET_APP_AVAILABILITY: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for {
		env, err := receiveUntil(c, filter{
			Namespace:   castproto.NamespaceReceiver,
			PayloadType: castproto.PayloadString,
		}, time.Until(deadline))
		if err != nil {
			return false, err
		}

		var resp appAvailabilityResponse
		if err := json.Unmarshal(env.Payload, &resp); err != nil {
			return false, fmt.Errorf("session: decoding availability response: %w", err)
		}
		if resp.ResponseType != availResponseType || resp.RequestID != reqID {
			// Not our reply (e.g. a prior request's stale response); keep
			// waiting until the deadline the caller asked for.
			continue
		}

		status, ok := resp.Availability[appID]
		if !ok {
			return false, fmt.Errorf("session: availability response missing entry for %q", appID)
		}
		switch status {
		case availStatusAvailable:
			return true, nil
		case availStatusUnavailable:
			return false, nil
		default:
			return false, fmt.Errorf("session: unexpected availability status %q", status)
		}
	}
}
