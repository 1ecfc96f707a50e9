package flash

// Driver is the platform collaborator a Store reads and writes flash
// sectors through. Implementations must treat addr as a byte offset into
// the flash address space and must erase a sector before it can be
// rewritten, mirroring real NOR flash semantics.
//
// Grounded on the ublk Backend interface (internal/interfaces): a narrow
// set of synchronous, blocking primitives injected by the host rather
// than a global singleton.
type Driver interface {
	// EraseSector erases the SectorSize-aligned sector containing addr,
	// setting its contents to all 0xFF bytes.
	EraseSector(addr uint32) error

	// ReadAt reads len(dst) bytes starting at addr into dst.
	ReadAt(addr uint32, dst []byte) error

	// WriteAt writes src to addr. The destination range must already be
	// erased; Store never relies on WriteAt performing its own erase.
	WriteAt(addr uint32, src []byte) error
}
