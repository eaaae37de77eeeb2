package castproto

// Namespace is the closed set of Cast v2 control namespaces used to
// multiplex messages across a single TLS channel, plus two sentinels used
// only for demux filtering.
type Namespace int

const (
	// NamespaceConnection carries CONNECT/CLOSE handshake messages.
	NamespaceConnection Namespace = iota
	// NamespaceDeviceAuth carries the (unimplemented) authenticity challenge.
	NamespaceDeviceAuth
	// NamespaceHeartbeat carries PING/PONG keepalives.
	NamespaceHeartbeat
	// NamespaceReceiver carries receiver application control messages.
	NamespaceReceiver

	// NamespaceAny matches any namespace in a demux filter; never produced
	// by Decode.
	NamespaceAny
	// NamespaceUnknown marks an envelope whose namespace URN didn't match
	// one of the four known values.
	NamespaceUnknown
)

var namespaceURNs = [...]string{
	NamespaceConnection: "urn:x-cast:com.google.cast.tp.connection",
	NamespaceDeviceAuth: "urn:x-cast:com.google.cast.tp.deviceauth",
	NamespaceHeartbeat:  "urn:x-cast:com.google.cast.tp.heartbeat",
	NamespaceReceiver:   "urn:x-cast:com.google.cast.receiver",
}

// String returns the wire URN for a known namespace, or a placeholder for
// the sentinel values.
func (n Namespace) String() string {
	if n >= 0 && int(n) < len(namespaceURNs) {
		return namespaceURNs[n]
	}
	switch n {
	case NamespaceAny:
		return "<any>"
	case NamespaceUnknown:
		return "<unknown>"
	default:
		return "<invalid>"
	}
}

// ParseNamespace matches a wire URN against the four known namespaces,
// returning NamespaceUnknown for anything else.
func ParseNamespace(urn string) Namespace {
	for i, known := range namespaceURNs {
		if urn == known {
			return Namespace(i)
		}
	}
	return NamespaceUnknown
}

// PayloadType distinguishes JSON-string payloads from raw binary payloads.
type PayloadType int

const (
	// PayloadString marks a UTF-8 JSON payload.
	PayloadString PayloadType = 0
	// PayloadBinary marks a raw binary payload.
	PayloadBinary PayloadType = 1

	// PayloadAny matches either payload kind in a demux filter.
	PayloadAny PayloadType = -1
)

// Endpoint identity constants, shared by the framer (stamping outbound
// envelopes) and the demux (classifying inbound ones).
const (
	GlobalSenderID   = "sender-0"
	GlobalReceiverID = "receiver-0"
)
