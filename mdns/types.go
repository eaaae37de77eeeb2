// Package mdns implements the Cast discovery query: a multicast DNS PTR
// lookup for "_googlecast._tcp.local" and the response parsing that turns a
// raw DNS answer into a DeviceRecord, ported field-for-field from the
// original socket-level implementation this one replaces.
package mdns

import "net"

const (
	dnsTransactionID = 0xFEED
	// dnsResponseFlags is the flag word a well-formed mDNS response to our
	// query carries: QR=1, opcode=0, AA=1, every other bit clear (0x8400,
	// matching the captured fixtures byte-for-byte).
	dnsResponseFlags = 0x8400

	dnsTypeA    = 1
	dnsTypePTR  = 12
	dnsTypeTXT  = 16
	dnsTypeAAAA = 28
	dnsTypeSRV  = 33

	dnsClassINMask = 0x7FFF
	dnsClassIN     = 0x0001
)

// serviceLabels is the fixed three-label query name, "_googlecast._tcp.local".
var serviceLabels = []string{"_googlecast", "_tcp", "local"}

// DefaultPort is the port Cast devices listen on for the TLS control
// channel; used as the fallback when a response carries no SRV record.
const DefaultPort = 8009

// DeviceRecord describes one Cast receiver discovered via mDNS.
type DeviceRecord struct {
	// Name is the friendly/instance name (TXT fn=, falling back to the
	// PTR target's leading label).
	Name string
	// ID is the device's stable identifier (TXT id=), empty if absent.
	ID string
	// Model is the device model string (TXT md=), defaulting to
	// "Chromecast" if the TXT record carries none.
	Model string
	// IPAddr is the address from the response's A/AAAA additional record,
	// or the address the response was received from when it carries none.
	IPAddr net.IP
	// Port is the TLS control channel port (SRV record, or DefaultPort).
	Port uint16
}

func labelsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
