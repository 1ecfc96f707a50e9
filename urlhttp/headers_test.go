package urlhttp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderListCaseInsensitiveGet(t *testing.T) {
	var h HeaderList
	h.Add("Host", "a")
	h.Add("host", "b")

	v, ok := h.Get("HOST")
	require.True(t, ok)
	assert.Equal(t, "b", v)
	assert.Len(t, h, 1, "second Add should overwrite in place, not append")
}

func TestHeaderListPreservesFirstAddedOrder(t *testing.T) {
	var h HeaderList
	h.Add("Accept", "*/*")
	h.Add("Host", "example.com")
	h.Add("accept", "text/html")

	require.Len(t, h, 2)
	assert.Equal(t, "Accept", h[0].Name)
	assert.Equal(t, "text/html", h[0].Value)
	assert.Equal(t, "Host", h[1].Name)
}

func TestHeaderListRemove(t *testing.T) {
	var h HeaderList
	h.Add("A", "1")
	h.Add("B", "2")
	h.Remove("a")

	assert.False(t, h.Has("A"))
	assert.True(t, h.Has("B"))
}

func TestHeaderListOutputFormatsCRLF(t *testing.T) {
	var h HeaderList
	h.Add("Host", "example.com")
	h.Add("Connection", "close")
	assert.Equal(t, "Host: example.com\r\nConnection: close\r\n", h.Output())
}
