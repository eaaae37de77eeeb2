package castproto

import (
	"bytes"
	"testing"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	cases := []Envelope{
		{
			Version: ProtocolVersion, SourceID: GlobalSenderID, DestinationID: GlobalReceiverID,
			Namespace: NamespaceConnection, PayloadType: PayloadString,
			Payload: []byte(`{"type":"CONNECT"}`),
		},
		{
			Version: ProtocolVersion, SourceID: "sender-0", DestinationID: "receiver-0",
			Namespace: NamespaceHeartbeat, PayloadType: PayloadString,
			Payload: []byte(`{"type":"PING"}`),
		},
		{
			// zero-length payload, still a valid STRING message.
			Version: ProtocolVersion, SourceID: "sender-0", DestinationID: "receiver-0",
			Namespace: NamespaceReceiver, PayloadType: PayloadString,
			Payload: []byte(""),
		},
		{
			Version: ProtocolVersion, SourceID: "sender-0", DestinationID: "receiver-0",
			Namespace: NamespaceDeviceAuth, PayloadType: PayloadBinary,
			Payload: []byte{0x00, 0x01, 0x02, 0x03},
		},
	}

	for _, c := range cases {
		frame, err := Encode(c)
		if err != nil {
			t.Fatalf("Encode(%+v): %v", c, err)
		}
		dmx := NewDemultiplexer("", "")
		dmx.Feed(frame)
		got, ok, err := dmx.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			t.Fatalf("expected a complete frame")
		}
		if got.Version != c.Version || got.SourceID != c.SourceID ||
			got.DestinationID != c.DestinationID || got.Namespace != c.Namespace ||
			got.PayloadType != c.PayloadType || !bytes.Equal(got.Payload, c.Payload) {
			t.Fatalf("round trip mismatch: got %+v, want %+v", got, c)
		}
	}
}

func TestDemultiplexerPartialFrame(t *testing.T) {
	frame, _ := Encode(Envelope{
		Version: ProtocolVersion, SourceID: "sender-0", DestinationID: "receiver-0",
		Namespace: NamespaceHeartbeat, PayloadType: PayloadString, Payload: []byte(`{"type":"PING"}`),
	})
	dmx := NewDemultiplexer("", "")
	dmx.Feed(frame[:len(frame)-3])
	_, ok, err := dmx.Next()
	if err != nil || ok {
		t.Fatalf("expected no complete frame yet, got ok=%v err=%v", ok, err)
	}
	dmx.Feed(frame[len(frame)-3:])
	_, ok, err = dmx.Next()
	if err != nil || !ok {
		t.Fatalf("expected a complete frame after remaining bytes arrived, ok=%v err=%v", ok, err)
	}
}

// TestFrameErrorResilience: a frame with an invalid payload-kind (2) must
// be reported as a frame error and fully consumed, after which the next
// well-formed frame decodes normally.
func TestFrameErrorResilience(t *testing.T) {
	good, _ := Encode(Envelope{
		Version: ProtocolVersion, SourceID: "sender-0", DestinationID: "receiver-0",
		Namespace: NamespaceHeartbeat, PayloadType: PayloadString, Payload: []byte(`{"type":"PONG"}`),
	})

	// Hand-build a frame with payload kind 2 (invalid): reuse encode then
	// patch the payload-type varint byte.
	bad, _ := Encode(Envelope{
		Version: ProtocolVersion, SourceID: "sender-0", DestinationID: "receiver-0",
		Namespace: NamespaceHeartbeat, PayloadType: PayloadString, Payload: []byte(`{"type":"PING"}`),
	})
	idx := bytes.Index(bad, []byte{0x28, 0x00}) // tag (5<<3)|0, value 0
	if idx < 0 {
		t.Fatalf("could not locate payload-type field in encoded frame")
	}
	bad[idx+1] = 0x02

	dmx := NewDemultiplexer("", "")
	dmx.Feed(bad)
	dmx.Feed(good)

	_, ok, err := dmx.Next()
	if ok || err == nil {
		t.Fatalf("expected the malformed frame to report an error, ok=%v err=%v", ok, err)
	}

	got, ok, err := dmx.Next()
	if err != nil || !ok {
		t.Fatalf("expected the next frame to parse cleanly, ok=%v err=%v", ok, err)
	}
	if got.Namespace != NamespaceHeartbeat || string(got.Payload) != `{"type":"PONG"}` {
		t.Fatalf("unexpected recovered frame: %+v", got)
	}
	if dmx.Pending() != 0 {
		t.Fatalf("expected buffer to be fully drained, %d bytes remain", dmx.Pending())
	}
}

func TestClassifyID(t *testing.T) {
	cases := []struct {
		id, global, session string
		want                Endpoint
	}{
		{"receiver-0", "receiver-0", "castptl-000", EndpointGlobal},
		{"castptl-000", "receiver-0", "castptl-000", EndpointSession},
		{"sender-0", "sender-0", "castptl-nnn", EndpointGlobal},
		{"some-other-id", "sender-0", "castptl-nnn", EndpointUnknown},
		{"", "sender-0", "", EndpointUnknown},
	}
	for _, c := range cases {
		got := classifyID(c.id, c.global, c.session)
		if got != c.want {
			t.Errorf("classifyID(%q, %q, %q) = %v, want %v", c.id, c.global, c.session, got, c.want)
		}
	}
}
