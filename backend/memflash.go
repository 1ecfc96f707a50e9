// Package backend provides flash.Driver implementations: an in-RAM
// driver for tests and a file-backed driver for the demo binary.
//
// Grounded on go-ublk's backend package (backend/mem.go's RAM-backed
// Backend), adapted from a single flat address space to the flash
// package's two-fixed-sector addressing model, and from a Backend's
// byte-overwrite semantics to NOR flash's write-only-clears-bits /
// erase-to-all-ones semantics.
package backend

import (
	"fmt"
	"sync"

	"github.com/cristidbr/aircore/flash"
)

// MemDriver is an in-RAM flash.Driver covering a fixed set of sector
// addresses, registered up front. It models real NOR flash write
// behavior: EraseSector sets a sector to all 0xFF, and WriteAt can only
// clear bits (a write to a byte that wasn't erased first corrupts data
// instead of cleanly overwriting it), so tests exercise the same
// erase-before-write discipline the real driver would require.
type MemDriver struct {
	mu      sync.Mutex
	sectors map[uint32][]byte

	eraseCalls map[uint32]int
	writeCalls int

	// CrashAfterWrites, if positive, makes the CrashAfterWrites-th call
	// to WriteAt apply only its first half and return an error,
	// simulating a power loss mid-write.
	CrashAfterWrites int
}

// NewMemDriver returns a driver with the given sector addresses
// pre-erased (all 0xFF), ready for flash.Store.Setup to initialize.
func NewMemDriver(addrs ...uint32) *MemDriver {
	m := &MemDriver{
		sectors:    make(map[uint32][]byte, len(addrs)),
		eraseCalls: make(map[uint32]int, len(addrs)),
	}
	for _, a := range addrs {
		m.sectors[a] = erasedSector()
	}
	return m
}

func erasedSector() []byte {
	buf := make([]byte, flash.SectorSize)
	for i := range buf {
		buf[i] = 0xFF
	}
	return buf
}

func (m *MemDriver) EraseSector(addr uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sectors[addr]; !ok {
		return fmt.Errorf("backend: erase of unregistered sector 0x%08x", addr)
	}
	m.sectors[addr] = erasedSector()
	m.eraseCalls[addr]++
	return nil
}

func (m *MemDriver) ReadAt(addr uint32, dst []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sector, ok := m.sectors[addr]
	if !ok {
		return fmt.Errorf("backend: read of unregistered sector 0x%08x", addr)
	}
	if len(dst) > len(sector) {
		return fmt.Errorf("backend: read of %d bytes exceeds sector size %d", len(dst), len(sector))
	}
	copy(dst, sector[:len(dst)])
	return nil
}

func (m *MemDriver) WriteAt(addr uint32, src []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sector, ok := m.sectors[addr]
	if !ok {
		return fmt.Errorf("backend: write to unregistered sector 0x%08x", addr)
	}
	if len(src) > len(sector) {
		return fmt.Errorf("backend: write of %d bytes exceeds sector size %d", len(src), len(sector))
	}
	m.writeCalls++

	n := len(src)
	if m.CrashAfterWrites > 0 && m.writeCalls == m.CrashAfterWrites {
		n = len(src) / 2
		for i := 0; i < n; i++ {
			sector[i] &= src[i]
		}
		return fmt.Errorf("backend: simulated power loss after %d bytes", n)
	}
	for i := 0; i < n; i++ {
		sector[i] &= src[i]
	}
	return nil
}

// EraseCount reports how many times EraseSector has been called for
// addr, for wear-leveling assertions in tests.
func (m *MemDriver) EraseCount(addr uint32) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eraseCalls[addr]
}

// RawSector returns a copy of the raw bytes currently stored at addr,
// bypassing any Store — useful for asserting on-disk layout in tests.
func (m *MemDriver) RawSector(addr uint32) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(m.sectors[addr]))
	copy(cp, m.sectors[addr])
	return cp
}

var _ flash.Driver = (*MemDriver)(nil)
