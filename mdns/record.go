package mdns

import (
	"errors"
	"net"
	"strings"

	"github.com/zmap/castgrab2/wire"
)

// errNotCastResponse marks a datagram that parsed cleanly but isn't a
// matching response to our query (wrong transaction id, wrong question
// name, non-PTR answer, ...). The caller silently skips it rather than
// treating it as a malformed-message error, exactly as the original scan
// loop does for every one of these mismatches.
var errNotCastResponse = errors.New("mdns: not a googlecast response")

// parseResponse decodes one mDNS response datagram into a DeviceRecord.
// IPAddr is set here only if an A/AAAA additional record supplies one; the
// caller fills it in from the UDP datagram's source address otherwise.
func parseResponse(msg []byte) (DeviceRecord, error) {
	b := wire.NewBufferFrom(msg)

	txnID, err := b.GetUint16()
	if err != nil {
		return DeviceRecord{}, errNotCastResponse
	}
	flags, err := b.GetUint16()
	if err != nil {
		return DeviceRecord{}, errNotCastResponse
	}
	qdcount, err := b.GetUint16()
	if err != nil {
		return DeviceRecord{}, errNotCastResponse
	}
	ancount, err := b.GetUint16()
	if err != nil {
		return DeviceRecord{}, errNotCastResponse
	}
	nscount, err := b.GetUint16()
	if err != nil {
		return DeviceRecord{}, errNotCastResponse
	}
	arcount, err := b.GetUint16()
	if err != nil {
		return DeviceRecord{}, errNotCastResponse
	}

	if txnID != dnsTransactionID || flags != dnsResponseFlags || qdcount != 0 || ancount != 1 {
		return DeviceRecord{}, errNotCastResponse
	}

	qLabels, next, err := decodeName(msg, b.Offset())
	if err != nil {
		return DeviceRecord{}, err
	}
	if err := b.Advance(next - b.Offset()); err != nil {
		return DeviceRecord{}, err
	}
	if !labelsEqual(qLabels, serviceLabels) {
		return DeviceRecord{}, errNotCastResponse
	}

	rtype, err := b.GetUint16()
	if err != nil {
		return DeviceRecord{}, errNotCastResponse
	}
	rclass, err := b.GetUint16()
	if err != nil {
		return DeviceRecord{}, errNotCastResponse
	}
	if _, err := b.GetUint32(); err != nil { // ttl, unused
		return DeviceRecord{}, errNotCastResponse
	}
	rdlen, err := b.GetUint16()
	if err != nil {
		return DeviceRecord{}, errNotCastResponse
	}
	if rtype != dnsTypePTR || (rclass&dnsClassINMask) != dnsClassIN {
		return DeviceRecord{}, errNotCastResponse
	}

	rec := DeviceRecord{Model: "Chromecast", Port: DefaultPort}
	if ptrLabels, _, err := decodeName(msg, b.Offset()); err == nil && len(ptrLabels) > 0 {
		rec.Name = ptrLabels[0]
	}
	if err := b.Advance(int(rdlen)); err != nil {
		return DeviceRecord{}, err
	}

	for i := 0; i < int(nscount); i++ {
		if err := skipRecord(msg, b); err != nil {
			return DeviceRecord{}, err
		}
	}

	for i := 0; i < int(arcount); i++ {
		if err := parseAdditionalRecord(msg, b, &rec); err != nil {
			return DeviceRecord{}, err
		}
	}

	return rec, nil
}

// skipRecord advances past one resource record (name, fixed fields, rdata)
// without interpreting it, used for authority records we never inspect.
func skipRecord(msg []byte, b *wire.Buffer) error {
	next, err := skipName(msg, b.Offset())
	if err != nil {
		return err
	}
	if err := b.Advance(next - b.Offset()); err != nil {
		return err
	}
	if _, err := b.GetUint16(); err != nil { // type
		return err
	}
	if _, err := b.GetUint16(); err != nil { // class
		return err
	}
	if _, err := b.GetUint32(); err != nil { // ttl
		return err
	}
	rdlen, err := b.GetUint16()
	if err != nil {
		return err
	}
	return b.Advance(int(rdlen))
}

// parseAdditionalRecord reads one additional-section record, folding A,
// AAAA, SRV, and TXT content into rec, then resyncs the cursor to the end
// of rdata regardless of how much of it was actually consumed above — the
// same unconditional "offset += rLen" the original performs after its
// type switch.
func parseAdditionalRecord(msg []byte, b *wire.Buffer, rec *DeviceRecord) error {
	next, err := skipName(msg, b.Offset())
	if err != nil {
		return err
	}
	if err := b.Advance(next - b.Offset()); err != nil {
		return err
	}
	rtype, err := b.GetUint16()
	if err != nil {
		return err
	}
	if _, err := b.GetUint16(); err != nil { // class
		return err
	}
	if _, err := b.GetUint32(); err != nil { // ttl
		return err
	}
	rdlen, err := b.GetUint16()
	if err != nil {
		return err
	}
	rdStart := b.Offset()

	switch rtype {
	case dnsTypeA:
		if rdlen == 4 {
			data, err := b.GetBytes(4)
			if err != nil {
				return err
			}
			rec.IPAddr = net.IPv4(data[0], data[1], data[2], data[3])
		}
	case dnsTypeAAAA:
		if rdlen == 16 {
			data, err := b.GetBytes(16)
			if err != nil {
				return err
			}
			rec.IPAddr = append(net.IP(nil), data...)
		}
	case dnsTypeSRV:
		if rdlen >= 6 {
			if err := b.Advance(4); err != nil { // priority, weight
				return err
			}
			port, err := b.GetUint16()
			if err != nil {
				return err
			}
			rec.Port = port
		}
	case dnsTypeTXT:
		data, err := b.GetBytes(int(rdlen))
		if err != nil {
			return err
		}
		parseTXT(data, rec)
	}

	// Whatever the switch above consumed, land exactly at the declared end
	// of this record's rdata.
	if want := rdStart + int(rdlen); b.Offset() != want {
		if err := b.Advance(want - b.Offset()); err != nil {
			return err
		}
	}
	return nil
}

// parseTXT walks a TXT record's length-prefixed character-strings, picking
// out the id=, fn=, and md= keys this package cares about.
func parseTXT(data []byte, rec *DeviceRecord) {
	for len(data) > 0 {
		slen := int(data[0])
		data = data[1:]
		if slen > len(data) {
			return
		}
		entry := string(data[:slen])
		data = data[slen:]

		switch {
		case strings.HasPrefix(entry, "id="):
			rec.ID = entry[3:]
		case strings.HasPrefix(entry, "fn="):
			rec.Name = entry[3:]
		case strings.HasPrefix(entry, "md="):
			rec.Model = entry[3:]
		}
	}
}
