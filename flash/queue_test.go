package flash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteQueueSearchEmpty(t *testing.T) {
	var q writeQueue
	kind, payload := q.search(1)
	assert.Equal(t, opNone, kind)
	assert.Nil(t, payload)
}

func TestWriteQueueSearchReturnsMostRecent(t *testing.T) {
	var q writeQueue
	q.enqueueSave(1, []byte("first"))
	q.enqueueSave(1, []byte("second"))

	kind, payload := q.search(1)
	assert.Equal(t, opSave, kind)
	assert.Equal(t, "second", string(payload))
}

func TestWriteQueueSearchHonorsLaterRemove(t *testing.T) {
	var q writeQueue
	q.enqueueSave(3, []byte("value"))
	q.enqueueRemove(3)

	kind, _ := q.search(3)
	assert.Equal(t, opRemove, kind)
}

func TestWriteQueueEnqueueSaveDeepCopies(t *testing.T) {
	var q writeQueue
	payload := []byte("mutable")
	q.enqueueSave(1, payload)
	payload[0] = 'X'

	_, stored := q.search(1)
	assert.Equal(t, "mutable", string(stored))
}

func TestWriteQueueFullAtSixteen(t *testing.T) {
	var q writeQueue
	for i := 0; i < QueueSize; i++ {
		q.enqueueRemove(byte(i))
	}
	assert.True(t, q.full())
}
