package backend

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/cristidbr/aircore/flash"
)

// FileDriver persists each flash sector as its own file on disk, written
// via github.com/natefinch/atomic so a process crash mid-write leaves
// either the old or the new sector image on disk, never a half-written
// one — the same power-loss guarantee flash.Store relies on the
// underlying NOR flash itself to provide. Grounded on
// calvinalkan-agent-task's Real.WriteFileAtomic.
type FileDriver struct {
	dir       string
	fileNames map[uint32]string
}

// NewFileDriver returns a driver that stores sector addr under
// dir/sector_<addr>.bin, pre-erasing (all 0xFF) any file that doesn't
// already exist.
func NewFileDriver(dir string, addrs ...uint32) (*FileDriver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("backend: create sector dir: %w", err)
	}
	d := &FileDriver{dir: dir, fileNames: make(map[uint32]string, len(addrs))}
	for _, a := range addrs {
		name := filepath.Join(dir, fmt.Sprintf("sector_%08x.bin", a))
		d.fileNames[a] = name
		if _, err := os.Stat(name); os.IsNotExist(err) {
			if err := atomic.WriteFile(name, bytes.NewReader(erasedSector())); err != nil {
				return nil, fmt.Errorf("backend: pre-erase %s: %w", name, err)
			}
		}
	}
	return d, nil
}

func (d *FileDriver) path(addr uint32) (string, error) {
	name, ok := d.fileNames[addr]
	if !ok {
		return "", fmt.Errorf("backend: unregistered sector 0x%08x", addr)
	}
	return name, nil
}

func (d *FileDriver) EraseSector(addr uint32) error {
	name, err := d.path(addr)
	if err != nil {
		return err
	}
	return atomic.WriteFile(name, bytes.NewReader(erasedSector()))
}

func (d *FileDriver) ReadAt(addr uint32, dst []byte) error {
	name, err := d.path(addr)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return err
	}
	if len(data) != flash.SectorSize {
		return fmt.Errorf("backend: %s has %d bytes, want %d", name, len(data), flash.SectorSize)
	}
	copy(dst, data[:len(dst)])
	return nil
}

func (d *FileDriver) WriteAt(addr uint32, src []byte) error {
	name, err := d.path(addr)
	if err != nil {
		return err
	}
	current, err := os.ReadFile(name)
	if err != nil {
		return err
	}
	merged := make([]byte, flash.SectorSize)
	copy(merged, current)
	for i := 0; i < len(src) && i < len(merged); i++ {
		merged[i] &= src[i]
	}
	return atomic.WriteFile(name, bytes.NewReader(merged))
}

var _ flash.Driver = (*FileDriver)(nil)
