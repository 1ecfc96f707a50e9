// Package flash implements a wear-leveled, checksum-protected,
// power-fail-safe key/value store across two fixed flash sectors, with a
// deferred write-back queue for coalescing bursts of updates into a
// single sector commit.
//
// A Store is an explicit context object — callers construct one per
// logical parameter store and pass it around, rather than reaching for
// package-level state, mirroring how the ublk Device/Backend pair keeps
// state off the package scope.
package flash

import (
	"github.com/cristidbr/aircore"
	"github.com/cristidbr/aircore/internal/bufpool"
	"github.com/cristidbr/aircore/internal/logging"
)

// Store is the flash parameter store context. The zero value is not
// usable; construct one with NewStore and call Setup before any
// Read/Save/Remove call.
type Store struct {
	driver Driver
	cfg    Config
	logger *logging.Logger

	currentAddr uint32
	backupAddr  uint32

	instantUpdate bool
	queue         writeQueue
	stats         Stats
}

// NewStore builds a Store bound to driver. Instant update starts enabled
// (esp_flash_instant_update defaults to 0x01), matching the firmware's
// default of committing every Save/Remove immediately.
func NewStore(driver Driver, cfg Config, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{
		driver:        driver,
		cfg:           cfg,
		logger:        logger,
		instantUpdate: true,
	}
}

// Setup reads both sectors, elects the one with the higher wear-level
// generation as current, and falls back to (re-)initializing the primary
// sector when neither is valid. It must be called once before any other
// Store method.
func (s *Store) Setup() error {
	primary := bufpool.GetSector()
	defer bufpool.PutSector(primary)
	secondary := bufpool.GetSector()
	defer bufpool.PutSector(secondary)

	primaryOK := s.driver.ReadAt(s.cfg.PrimaryAddr, primary) == nil && verifyChecksum(primary)
	secondaryOK := s.driver.ReadAt(s.cfg.SecondaryAddr, secondary) == nil && verifyChecksum(secondary)

	primaryUsable := primaryOK && isValidWearLevel(wearLevel(primary))
	secondaryUsable := secondaryOK && isValidWearLevel(wearLevel(secondary))

	switch {
	case primaryUsable && secondaryUsable:
		if wearLevel(primary) > wearLevel(secondary) {
			s.currentAddr, s.backupAddr = s.cfg.PrimaryAddr, s.cfg.SecondaryAddr
		} else {
			s.currentAddr, s.backupAddr = s.cfg.SecondaryAddr, s.cfg.PrimaryAddr
		}
		return nil
	case primaryUsable:
		s.currentAddr, s.backupAddr = s.cfg.PrimaryAddr, s.cfg.SecondaryAddr
		return nil
	case secondaryUsable:
		s.currentAddr, s.backupAddr = s.cfg.SecondaryAddr, s.cfg.PrimaryAddr
		return nil
	default:
		s.logger.Warn("no valid flash sector found, initializing primary")
		s.currentAddr, s.backupAddr = s.cfg.PrimaryAddr, s.cfg.SecondaryAddr
		return s.initializeCurrent()
	}
}

func isValidWearLevel(v uint16) bool {
	return v != invalidWearLevel0 && v != invalidWearLevelF
}

func (s *Store) initializeCurrent() error {
	fresh := bufpool.GetSector()
	defer bufpool.PutSector(fresh)
	initializeSector(fresh, s.cfg.ConfigFlags)
	if err := s.driver.EraseSector(s.currentAddr); err != nil {
		return ioError("flash.Store.Setup", err)
	}
	if err := s.driver.WriteAt(s.currentAddr, fresh); err != nil {
		return ioError("flash.Store.Setup", err)
	}
	s.stats.SectorEraseCount[s.sectorIndex(s.currentAddr)]++
	return nil
}

func (s *Store) sectorIndex(addr uint32) int {
	if addr == s.cfg.PrimaryAddr {
		return 0
	}
	return 1
}

// readCurrent reads and checksum-verifies the current sector into a
// pooled buffer. The caller owns the returned buffer and must return it
// with bufpool.PutSector.
func (s *Store) readCurrent() ([]byte, error) {
	buf := bufpool.GetSector()
	if err := s.driver.ReadAt(s.currentAddr, buf); err != nil {
		bufpool.PutSector(buf)
		return nil, ioError("flash.Store.readCurrent", err)
	}
	if !verifyChecksum(buf) {
		s.stats.ChecksumMismatchCount++
		bufpool.PutSector(buf)
		return nil, checksumMismatchError("flash.Store.readCurrent")
	}
	return buf, nil
}

// commit seals sector with a bumped wear-level counter and writes it to
// the sector that is *not* currently active, then makes that sector the
// new current one. This is the atomic swap that makes a power loss
// mid-write recoverable: the previous current sector is left untouched
// until the new one is fully written and valid.
func (s *Store) commit(sector []byte) error {
	target := s.backupAddr

	setWearLevel(sector, wearLevel(sector)+1)
	sealChecksum(sector)

	if err := s.driver.EraseSector(target); err != nil {
		s.logger.Warn("commit erase failed, keeping current sector")
		return ioError("flash.Store.commit", err)
	}
	if err := s.driver.WriteAt(target, sector); err != nil {
		s.logger.Warn("commit write failed, keeping current sector")
		return ioError("flash.Store.commit", err)
	}
	s.stats.SectorEraseCount[s.sectorIndex(target)]++
	s.stats.CommitCount++

	s.currentAddr, s.backupAddr = target, s.currentAddr
	s.logger.Debug("commit swapped current sector")
	return nil
}

// Read looks up a parameter. While instant update is disabled, a pending
// queued action for id (if any) shadows the committed sector contents.
func (s *Store) Read(id byte) (value []byte, found bool, err error) {
	if !s.instantUpdate {
		if kind, payload := s.queue.search(id); kind != opNone {
			if kind == opRemove {
				return nil, false, nil
			}
			value = make([]byte, len(payload))
			copy(value, payload)
			return value, true, nil
		}
	}

	sector, err := s.readCurrent()
	if err != nil {
		return nil, false, err
	}
	defer bufpool.PutSector(sector)

	offset, size, found := findRecord(sector, id)
	if !found {
		return nil, false, nil
	}
	value = make([]byte, size)
	copy(value, sector[offset+2:offset+2+size])
	return value, true, nil
}

// Save writes id/data, either immediately (instant update) or by
// enqueuing the write for the next Flush.
func (s *Store) Save(id byte, data []byte) error {
	if len(data) > MaxPayloadSize {
		return flashError("flash.Store.Save", aircore.CodeInvalidParameter, "payload exceeds 255 bytes")
	}

	if !s.instantUpdate {
		if s.queue.full() {
			if err := s.Flush(); err != nil {
				return err
			}
		}
		s.queue.enqueueSave(id, data)
		return nil
	}

	sector, err := s.readCurrent()
	if err != nil {
		return err
	}
	defer bufpool.PutSector(sector)

	removeRecord(sector, id)
	if err := insertRecord(sector, id, data); err != nil {
		return err
	}
	return s.commit(sector)
}

// Remove deletes id, either immediately or by enqueuing the deletion.
func (s *Store) Remove(id byte) error {
	if !s.instantUpdate {
		if s.queue.full() {
			if err := s.Flush(); err != nil {
				return err
			}
		}
		s.queue.enqueueRemove(id)
		return nil
	}

	sector, err := s.readCurrent()
	if err != nil {
		return err
	}
	defer bufpool.PutSector(sector)

	removeRecord(sector, id)
	return s.commit(sector)
}

// Flush applies every queued action to a single in-RAM copy of the
// current sector and commits once, matching esp_flash_queue_run's
// read-apply-all-commit-once discipline. A no-op if the queue is empty.
// On error the queue is left untouched so a later Flush can retry.
func (s *Store) Flush() error {
	if s.queue.fill == 0 {
		return nil
	}

	sector, err := s.readCurrent()
	if err != nil {
		return err
	}
	defer bufpool.PutSector(sector)

	for i := 0; i < s.queue.fill; i++ {
		entry := s.queue.entries[i]
		switch entry.kind {
		case opRemove:
			removeRecord(sector, entry.id)
		case opSave:
			removeRecord(sector, entry.id)
			if err := insertRecord(sector, entry.id, entry.payload); err != nil {
				return err
			}
		}
	}

	if err := s.commit(sector); err != nil {
		return err
	}
	s.queue.reset()
	s.stats.QueueFlushCount++
	return nil
}

// EnableInstantUpdate switches to immediate commits and flushes whatever
// is currently queued.
func (s *Store) EnableInstantUpdate() error {
	s.instantUpdate = true
	return s.Flush()
}

// DisableInstantUpdate switches to deferred commits. Writes already
// committed are unaffected; nothing is flushed.
func (s *Store) DisableInstantUpdate() {
	s.instantUpdate = false
}

// InstantUpdate reports whether writes currently commit immediately.
func (s *Store) InstantUpdate() bool {
	return s.instantUpdate
}
