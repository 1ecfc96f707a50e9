package wsstream

import (
	"math/rand"
	"sync"
	"time"
)

// MaskSource supplies the 32-bit masking key applied to outbound
// client-to-server frames. It is a collaborator so tests can substitute a
// deterministic source and so the default math/rand-backed generator's
// shared state stays out of the Encode hot path's argument list.
type MaskSource interface {
	NextMask() uint32
}

type randMaskSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewDefaultMaskSource returns a MaskSource backed by a private, seeded
// math/rand generator. RFC 6455 only requires the mask to be
// unpredictable to an observer of the wire, not cryptographically
// secure, so math/rand is adequate and far cheaper on a microcontroller
// than crypto/rand.
func NewDefaultMaskSource() MaskSource {
	return &randMaskSource{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (r *randMaskSource) NextMask() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Uint32()
}

// FixedMaskSource always returns the same key. Useful in tests that need
// reproducible frame bytes.
type FixedMaskSource uint32

func (f FixedMaskSource) NextMask() uint32 { return uint32(f) }
