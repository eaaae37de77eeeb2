package mdns

import "errors"

// maxPointerHops bounds how many compression-pointer redirects a single
// name decode may follow, guarding against a crafted response whose
// pointers form a cycle (the original parser has no such bound).
const maxPointerHops = 16

var errTruncatedName = errors.New("mdns: truncated name")
var errPointerLoop = errors.New("mdns: name compression pointer loop")

// decodeName reads a sequence of length-prefixed labels starting at offset
// start within msg, following RFC 1035 §4.1.4 compression pointers (the top
// two bits of the length byte set) as needed. It returns the decoded labels
// and the offset immediately following the name *as it appears in the
// uncompressed stream* — i.e. right after the first pointer taken, or right
// after the terminating zero byte if no pointer was followed.
func decodeName(msg []byte, start int) (labels []string, next int, err error) {
	offset := start
	redirected := false
	hops := 0

	for {
		if offset >= len(msg) {
			return nil, 0, errTruncatedName
		}
		lengthByte := msg[offset]

		if lengthByte&0xC0 == 0xC0 {
			if offset+1 >= len(msg) {
				return nil, 0, errTruncatedName
			}
			if !redirected {
				next = offset + 2
			}
			hops++
			if hops > maxPointerHops {
				return nil, 0, errPointerLoop
			}
			offset = int(lengthByte&0x3F)<<8 | int(msg[offset+1])
			redirected = true
			continue
		}

		if lengthByte == 0 {
			if !redirected {
				next = offset + 1
			}
			break
		}

		offset++
		end := offset + int(lengthByte)
		if end > len(msg) {
			return nil, 0, errTruncatedName
		}
		labels = append(labels, string(msg[offset:end]))
		offset = end
		if !redirected {
			next = offset
		}
	}

	return labels, next, nil
}

// skipName advances past a name at start without returning its labels,
// refusing to follow a compression pointer (matching the original parser's
// skipQName, used only for authority/additional record names which this
// package never needs to resolve).
func skipName(msg []byte, start int) (next int, err error) {
	offset := start
	for {
		if offset >= len(msg) {
			return 0, errTruncatedName
		}
		lengthByte := msg[offset]
		offset++
		if lengthByte&0xC0 == 0xC0 {
			if offset >= len(msg) {
				return 0, errTruncatedName
			}
			offset++
			return offset, nil
		}
		if lengthByte == 0 {
			return offset, nil
		}
		offset += int(lengthByte)
		if offset > len(msg) {
			return 0, errTruncatedName
		}
	}
}
