package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristidbr/aircore/flash"
)

func TestMemDriverEraseProducesAllOnes(t *testing.T) {
	const addr = 0x1000
	d := NewMemDriver(addr)

	require.NoError(t, d.EraseSector(addr))
	raw := d.RawSector(addr)
	for i, b := range raw {
		require.Equalf(t, byte(0xFF), b, "byte %d not erased", i)
	}
	assert.Equal(t, 1, d.EraseCount(addr))
}

func TestMemDriverWriteOnlyClearsBits(t *testing.T) {
	const addr = 0x2000
	d := NewMemDriver(addr)
	require.NoError(t, d.EraseSector(addr))

	first := make([]byte, flash.SectorSize)
	first[0] = 0x0F
	require.NoError(t, d.WriteAt(addr, first))

	// Writing 0xFF on top must not set the already-cleared high nibble
	// back to 1: flash can only clear bits between erases.
	second := make([]byte, flash.SectorSize)
	second[0] = 0xFF
	require.NoError(t, d.WriteAt(addr, second))

	raw := d.RawSector(addr)
	assert.Equal(t, byte(0x0F), raw[0])
}

func TestMemDriverCrashMidWrite(t *testing.T) {
	const addr = 0x3000
	d := NewMemDriver(addr)
	require.NoError(t, d.EraseSector(addr))
	d.CrashAfterWrites = 1

	payload := make([]byte, flash.SectorSize)
	for i := range payload {
		payload[i] = 0x00
	}
	err := d.WriteAt(addr, payload)
	require.Error(t, err)

	raw := d.RawSector(addr)
	// first half cleared, second half still erased
	assert.Equal(t, byte(0x00), raw[0])
	assert.Equal(t, byte(0xFF), raw[len(raw)-1])
}

func TestMemDriverReadWriteUnregisteredSector(t *testing.T) {
	d := NewMemDriver(0x1000)
	dst := make([]byte, flash.SectorSize)
	assert.Error(t, d.ReadAt(0x9999, dst))
	assert.Error(t, d.WriteAt(0x9999, dst))
	assert.Error(t, d.EraseSector(0x9999))
}
