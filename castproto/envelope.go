// Package castproto implements the Cast v2 wire envelope: a length-prefixed,
// protobuf-style record carrying protocol version, source/destination ids,
// namespace, and a STRING-or-BINARY payload. See CastMessage in the
// original protobuf definition this mirrors field-for-field.
package castproto

import (
	"fmt"

	"github.com/zmap/castgrab2/wire"
	"google.golang.org/protobuf/encoding/protowire"
)

// ProtocolVersion is the only value CASTV2_1_0 defines.
const ProtocolVersion = 0

// Field numbers for the CastMessage record.
const (
	fieldProtocolVersion = 1
	fieldSourceID         = 2
	fieldDestinationID    = 3
	fieldNamespace        = 4
	fieldPayloadType       = 5
	fieldPayloadString    = 6
	fieldPayloadBinary    = 7
)

// DefaultMaxFrameSize bounds how large a single inbound frame may be before
// it is rejected, to avoid pathological allocations from a malformed or
// hostile length prefix.
const DefaultMaxFrameSize = 64 * 1024

// Envelope is one decoded or to-be-encoded Cast message.
type Envelope struct {
	Version       int32
	SourceID      string
	DestinationID string
	Namespace     Namespace
	PayloadType   PayloadType
	Payload       []byte
}

// FrameError reports a malformed frame. The frame's bytes have already been
// consumed from the demultiplexer's buffer by the time this is returned.
type FrameError struct {
	Reason string
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("castproto: malformed frame: %s", e.Reason)
}

// Encode assembles e into a length-prefixed Cast frame: a big-endian uint32
// byte count followed by the protobuf-style record.
func Encode(e Envelope) ([]byte, error) {
	body := wire.NewBuffer()
	body.PutVarintField(fieldProtocolVersion, uint64(e.Version))
	body.PutBytesField(fieldSourceID, []byte(e.SourceID))
	body.PutBytesField(fieldDestinationID, []byte(e.DestinationID))
	body.PutBytesField(fieldNamespace, []byte(e.Namespace.String()))
	body.PutVarintField(fieldPayloadType, uint64(e.PayloadType))
	switch e.PayloadType {
	case PayloadString:
		body.PutBytesField(fieldPayloadString, e.Payload)
	case PayloadBinary:
		body.PutBytesField(fieldPayloadBinary, e.Payload)
	default:
		return nil, fmt.Errorf("castproto: invalid payload type %d", e.PayloadType)
	}

	frame := wire.NewBuffer()
	frame.PutUint32(uint32(body.Len()))
	frame.PutBytes(body.Bytes())
	return frame.Bytes(), nil
}

// Decode parses the protobuf-style record in body (the bytes *after* the
// 4-byte length prefix, i.e. exactly the record the length describes). It
// rejects unknown wire types (3, 4 - deprecated groups), unknown field
// numbers, and frames missing any of the six required fields.
func Decode(body []byte) (Envelope, error) {
	b := wire.NewBufferFrom(body)

	var (
		version                           int32 = -1
		sourceID, destinationID           string
		haveSource, haveDestination       bool
		namespace                         = NamespaceUnknown
		haveNamespace                     bool
		payloadType                       PayloadType = -1
		payload                           []byte
		havePayload                       bool
	)

	for b.Remaining() > 0 {
		hdr, err := b.GetTag()
		if err != nil {
			return Envelope{}, &FrameError{Reason: "truncated field tag"}
		}
		switch hdr.WireType {
		case protowire.VarintType:
			v, err := b.GetVarint()
			if err != nil {
				return Envelope{}, &FrameError{Reason: "truncated varint field"}
			}
			switch hdr.Number {
			case fieldProtocolVersion:
				version = int32(v)
			case fieldPayloadType:
				pt := PayloadType(v)
				if pt != PayloadString && pt != PayloadBinary {
					return Envelope{}, &FrameError{Reason: fmt.Sprintf("invalid payload type %d", v)}
				}
				payloadType = pt
			default:
				return Envelope{}, &FrameError{Reason: fmt.Sprintf("unexpected varint field %d", hdr.Number)}
			}
		case protowire.BytesType:
			v, err := b.GetLengthPrefixed()
			if err != nil {
				return Envelope{}, &FrameError{Reason: "truncated length-delimited field"}
			}
			switch hdr.Number {
			case fieldSourceID:
				sourceID = string(v)
				haveSource = true
			case fieldDestinationID:
				destinationID = string(v)
				haveDestination = true
			case fieldNamespace:
				namespace = ParseNamespace(string(v))
				haveNamespace = true
			case fieldPayloadString, fieldPayloadBinary:
				payload = v
				havePayload = true
			default:
				return Envelope{}, &FrameError{Reason: fmt.Sprintf("unexpected bytes field %d", hdr.Number)}
			}
		case protowire.Fixed32Type, protowire.Fixed64Type:
			return Envelope{}, &FrameError{Reason: "unexpected fixed-width field"}
		default:
			// Wire types 3 and 4 (StartGroupType/EndGroupType) land here.
			return Envelope{}, &FrameError{Reason: "deprecated group wire type"}
		}
	}

	if version != ProtocolVersion || !haveSource || !haveDestination ||
		!haveNamespace || namespace == NamespaceUnknown ||
		payloadType == -1 || !havePayload {
		return Envelope{}, &FrameError{Reason: "missing required field"}
	}

	return Envelope{
		Version:       version,
		SourceID:      sourceID,
		DestinationID: destinationID,
		Namespace:     namespace,
		PayloadType:   payloadType,
		Payload:       payload,
	}, nil
}
