package flash

import (
	"encoding/binary"

	"github.com/cristidbr/aircore"
)

// A sector is laid out as 1024 little-endian 32-bit words:
//
//	word 0        : wear-level generation counter (lower 16 bits)
//	word 1        : config flags
//	words 2..1022 : sorted-by-id TLV record segment, 0x00 id terminated
//	word 1023     : XOR checksum over words 0..1022
//
// Grounded byte-for-byte on esp_flash_save.c's sector_data layout, with
// encode/decode done through encoding/binary.LittleEndian in the manner
// of the ublk uapi marshal helpers rather than unsafe struct casts.
const (
	SectorWords = 1024
	SectorSize  = SectorWords * 4

	headerWords = 2
	segmentOff  = headerWords * 4  // 8: first byte of the record segment
	checksumOff = (SectorWords - 1) * 4 // 4092: offset of the checksum word
	segmentEnd  = checksumOff      // records must fit in [segmentOff, segmentEnd)

	// MaxPayloadSize is the largest value a single record can hold.
	MaxPayloadSize = 255

	invalidWearLevel0 = 0x0000
	invalidWearLevelF = 0xFFFF
)

func computeChecksum(sector []byte) uint32 {
	var sum uint32
	for i := 0; i < SectorWords-1; i++ {
		sum ^= binary.LittleEndian.Uint32(sector[i*4 : i*4+4])
	}
	return sum
}

func verifyChecksum(sector []byte) bool {
	return binary.LittleEndian.Uint32(sector[checksumOff:checksumOff+4]) == computeChecksum(sector)
}

func sealChecksum(sector []byte) {
	binary.LittleEndian.PutUint32(sector[checksumOff:checksumOff+4], computeChecksum(sector))
}

func wearLevel(sector []byte) uint16 {
	return binary.LittleEndian.Uint16(sector[0:2])
}

func setWearLevel(sector []byte, v uint16) {
	binary.LittleEndian.PutUint16(sector[0:2], v)
}

func configFlags(sector []byte) uint32 {
	return binary.LittleEndian.Uint32(sector[4:8])
}

func setConfigFlags(sector []byte, v uint32) {
	binary.LittleEndian.PutUint32(sector[4:8], v)
}

// initializeSector resets sector to an empty, valid, wear-level-1 image.
func initializeSector(sector []byte, flags uint32) {
	for i := range sector {
		sector[i] = 0
	}
	setWearLevel(sector, 1)
	setConfigFlags(sector, flags)
	sealChecksum(sector)
}

func alignedRecordSize(payloadSize int) int {
	return (2 + payloadSize + 3) &^ 3
}

// findRecord returns the byte offset and payload size of the record with
// the given id, scanning the sorted segment until the 0x00 terminator.
func findRecord(sector []byte, id byte) (offset, size int, found bool) {
	p := segmentOff
	for p < segmentEnd {
		if sector[p] == 0x00 {
			break
		}
		size = int(sector[p+1])
		if sector[p] == id {
			return p, size, true
		}
		p += alignedRecordSize(size)
	}
	return 0, 0, false
}

// segmentTerminator returns the offset of the first unused byte in the
// record segment (the position of the 0x00 terminator, or segmentEnd if
// the segment is completely full with no terminator byte left).
func segmentTerminator(sector []byte) int {
	p := segmentOff
	for p < segmentEnd {
		if sector[p] == 0x00 {
			return p
		}
		size := int(sector[p+1])
		p += alignedRecordSize(size)
	}
	return segmentEnd
}

// insertAddress returns where a record with the given id belongs to keep
// the segment sorted ascending by id.
func insertAddress(sector []byte, id byte) int {
	p := segmentOff
	for p < segmentEnd {
		if sector[p] == 0x00 {
			break
		}
		if sector[p] > id {
			break
		}
		size := int(sector[p+1])
		p += alignedRecordSize(size)
	}
	return p
}

// insertRecord inserts a new id/payload pair into the sorted segment,
// shifting the tail right to make room. The shift moves the block
// [insertAt, segEnd) to [insertAt+aligned, segEnd+aligned) in descending
// order before copying the new record in — esp_flash_insert_parameter's
// shift length is corrected here to the record's own aligned size, and
// a capacity check is added where the original silently overran the
// segment.
func insertRecord(sector []byte, id byte, payload []byte) error {
	if len(payload) > MaxPayloadSize {
		return flashError("flash.insertRecord", aircore.CodeInvalidParameter, "payload exceeds 255 bytes")
	}
	aligned := alignedRecordSize(len(payload))
	segEnd := segmentTerminator(sector)
	if segEnd+aligned > segmentEnd {
		return segmentFullError()
	}
	at := insertAddress(sector, id)

	for i := segEnd - 1; i >= at; i-- {
		sector[i+aligned] = sector[i]
	}
	sector[at] = id
	sector[at+1] = byte(len(payload))
	copy(sector[at+2:at+2+len(payload)], payload)
	for i := at + 2 + len(payload); i < at+aligned; i++ {
		sector[i] = 0
	}
	return nil
}

// removeRecord deletes the record with the given id, shifting the tail
// left over the vacated bytes and zero-filling what's left over.
func removeRecord(sector []byte, id byte) bool {
	offset, size, found := findRecord(sector, id)
	if !found {
		return false
	}
	aligned := alignedRecordSize(size)
	segEnd := segmentTerminator(sector)

	for i := offset + aligned; i < segEnd; i++ {
		sector[i-aligned] = sector[i]
	}
	for i := segEnd - aligned; i < segEnd; i++ {
		sector[i] = 0
	}
	return true
}
