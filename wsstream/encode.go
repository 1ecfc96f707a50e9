package wsstream

import "encoding/binary"

// MaxPayloadSize bounds what Encode and Decoder will produce or accept.
// RFC 6455 allows up to a 64-bit length, but nothing this firmware talks
// to ever needs more than a few kilobytes of payload and a microcontroller
// has nowhere to buffer an 8-exabyte frame even if a peer claimed one.
const MaxPayloadSize = 1 << 20

// Encode builds a complete WebSocket frame carrying payload as a single,
// unfragmented message (FIN always set; continuation frames are not
// produced). When masked is true, maskSrc supplies the key and the
// returned frame carries the masked, client-to-server form required by
// the RFC; servers normally encode with masked set to false.
func Encode(opcode Opcode, payload []byte, masked bool, maskSrc MaskSource) ([]byte, error) {
	if !opcode.valid() {
		return nil, invalidFrameError("wsstream.Encode", "unsupported opcode")
	}
	n := len(payload)
	if n > MaxPayloadSize {
		return nil, frameTooLargeError("wsstream.Encode")
	}

	var extLen int
	switch {
	case n <= 125:
		extLen = 0
	case n <= 0xFFFF:
		extLen = 2
	default:
		extLen = 8
	}
	maskLen := 0
	if masked {
		maskLen = 4
	}

	frame := make([]byte, 2+extLen+maskLen+n)
	frame[0] = 0x80 | byte(opcode) // FIN=1, RSV=0

	b1 := byte(0)
	if masked {
		b1 |= 0x80
	}
	pos := 2
	switch extLen {
	case 0:
		b1 |= byte(n)
	case 2:
		b1 |= 126
		binary.BigEndian.PutUint16(frame[pos:pos+2], uint16(n))
		pos += 2
	case 8:
		b1 |= 127
		binary.BigEndian.PutUint64(frame[pos:pos+8], uint64(n))
		pos += 8
	}
	frame[1] = b1

	var key [4]byte
	if masked {
		if maskSrc == nil {
			maskSrc = NewDefaultMaskSource()
		}
		binary.BigEndian.PutUint32(key[:], maskSrc.NextMask())
		copy(frame[pos:pos+4], key[:])
		pos += 4
	}

	if masked {
		for i, b := range payload {
			frame[pos+i] = b ^ key[i%4]
		}
	} else {
		copy(frame[pos:], payload)
	}
	return frame, nil
}
