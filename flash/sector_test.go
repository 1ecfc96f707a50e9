package flash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristidbr/aircore"
)

func freshSector() []byte {
	sector := make([]byte, SectorSize)
	initializeSector(sector, 0)
	return sector
}

func TestInitializeSectorIsValid(t *testing.T) {
	sector := freshSector()
	assert.True(t, verifyChecksum(sector))
	assert.Equal(t, uint16(1), wearLevel(sector))
	assert.Equal(t, uint32(0), configFlags(sector))
}

func TestChecksumDetectsCorruption(t *testing.T) {
	sector := freshSector()
	sector[segmentOff] ^= 0xFF
	assert.False(t, verifyChecksum(sector))
}

func TestInsertFindRemoveRoundTrip(t *testing.T) {
	sector := freshSector()

	require.NoError(t, insertRecord(sector, 5, []byte("hello")))
	offset, size, found := findRecord(sector, 5)
	require.True(t, found)
	assert.Equal(t, 5, size)
	assert.Equal(t, "hello", string(sector[offset+2:offset+2+size]))

	assert.True(t, removeRecord(sector, 5))
	_, _, found = findRecord(sector, 5)
	assert.False(t, found)
}

func TestInsertKeepsSegmentSortedById(t *testing.T) {
	sector := freshSector()
	require.NoError(t, insertRecord(sector, 10, []byte("ten")))
	require.NoError(t, insertRecord(sector, 2, []byte("two")))
	require.NoError(t, insertRecord(sector, 7, []byte("seven")))

	p := segmentOff
	var ids []byte
	for p < segmentEnd && sector[p] != 0 {
		ids = append(ids, sector[p])
		size := int(sector[p+1])
		p += alignedRecordSize(size)
	}
	assert.Equal(t, []byte{2, 7, 10}, ids)
}

func TestInsertShiftPreservesNeighboringRecords(t *testing.T) {
	sector := freshSector()
	require.NoError(t, insertRecord(sector, 1, []byte("alpha")))
	require.NoError(t, insertRecord(sector, 9, []byte("omega")))
	require.NoError(t, insertRecord(sector, 5, []byte("middle")))

	for id, want := range map[byte]string{1: "alpha", 5: "middle", 9: "omega"} {
		offset, size, found := findRecord(sector, id)
		require.Truef(t, found, "id %d", id)
		assert.Equal(t, want, string(sector[offset+2:offset+2+size]))
	}
}

func TestInsertRejectsOversizedPayload(t *testing.T) {
	sector := freshSector()
	err := insertRecord(sector, 1, make([]byte, MaxPayloadSize+1))
	assert.Error(t, err)
}

func TestInsertReportsSegmentFull(t *testing.T) {
	sector := freshSector()
	payload := make([]byte, MaxPayloadSize)
	var id byte
	var err error
	// Max-size payloads take ~260 bytes aligned each; the 4084-byte
	// segment fills after about 15 of them, well within the 256 ids
	// available.
	for id = 0; id < 255; id++ {
		err = insertRecord(sector, id, payload)
		if err != nil {
			break
		}
	}
	require.Error(t, err)
	assert.True(t, aircore.IsCode(err, aircore.CodeSegmentFull))
}
