package flash

// QueueSize is the maximum number of deferred writes held before a flush
// is forced, matching ESP_FLASH_UPDATE_QUEUE_SIZE.
const QueueSize = 16

type opKind uint8

const (
	opNone opKind = iota
	opRemove
	opSave
)

type queueEntry struct {
	kind    opKind
	id      byte
	payload []byte
}

// writeQueue is the deferred write-back queue consulted by Read and
// drained by Flush while instant update is disabled. Entries are applied
// to flash in the order they were enqueued.
type writeQueue struct {
	entries [QueueSize]queueEntry
	fill    int
}

func (q *writeQueue) full() bool { return q.fill == QueueSize }

func (q *writeQueue) reset() { q.fill = 0 }

func (q *writeQueue) enqueueRemove(id byte) {
	q.entries[q.fill] = queueEntry{kind: opRemove, id: id}
	q.fill++
}

// enqueueSave deep-copies payload: the caller's slice may be reused or
// mutated after this call returns.
func (q *writeQueue) enqueueSave(id byte, payload []byte) {
	owned := make([]byte, len(payload))
	copy(owned, payload)
	q.entries[q.fill] = queueEntry{kind: opSave, id: id, payload: owned}
	q.fill++
}

// search returns the most recently queued action for id, scanning from
// the tail so a later Save/Remove shadows an earlier one for the same
// id. esp_flash_queue_search indexes with a uint8_t loop variable, so
// `i >= 0` never becomes false and the scan runs off into wraparound;
// fill-1 here is a plain signed int, and the empty-queue case is
// checked up front instead of relying on the loop to not execute.
func (q *writeQueue) search(id byte) (opKind, []byte) {
	if q.fill == 0 {
		return opNone, nil
	}
	for i := q.fill - 1; i >= 0; i-- {
		if q.entries[i].id == id {
			return q.entries[i].kind, q.entries[i].payload
		}
	}
	return opNone, nil
}
