// Package bufpool provides pooled byte slices for the flash sector scratch
// buffers so a read-modify-write cycle on the hot Save/Remove path does not
// allocate a fresh 4KiB buffer every time.
//
// Uses *[]byte pattern to avoid sync.Pool interface allocation overhead.
package bufpool

import "sync"

// Buffer sizes pooled by this package. SectorSize matches a flash sector
// image; RecordSize comfortably holds a single TLV record (2-byte header
// plus up to 255 bytes of payload, rounded up to the next multiple of 4).
const (
	SectorSize = 4096
	RecordSize = 260
)

var (
	sectorPool = sync.Pool{New: func() any { b := make([]byte, SectorSize); return &b }}
	recordPool = sync.Pool{New: func() any { b := make([]byte, RecordSize); return &b }}
)

// GetSector returns a zeroed SectorSize buffer. Caller must call PutSector
// when done with it.
func GetSector() []byte {
	buf := *sectorPool.Get().(*[]byte)
	for i := range buf {
		buf[i] = 0
	}
	return buf
}

// PutSector returns a sector buffer to the pool. Buffers with a
// non-standard capacity (never produced by GetSector) are dropped.
func PutSector(buf []byte) {
	if cap(buf) != SectorSize {
		return
	}
	buf = buf[:SectorSize]
	sectorPool.Put(&buf)
}

// GetRecord returns a buffer of at least size bytes, backed by the record
// pool when it fits, or a fresh allocation otherwise.
func GetRecord(size int) []byte {
	if size > RecordSize {
		return make([]byte, size)
	}
	buf := *recordPool.Get().(*[]byte)
	return buf[:size]
}

// PutRecord returns a record buffer to the pool.
func PutRecord(buf []byte) {
	if cap(buf) != RecordSize {
		return
	}
	buf = buf[:RecordSize]
	recordPool.Put(&buf)
}
