package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorldSetGet(t *testing.T) {
	w := NewWorld()
	assert.Equal(t, 0, w.Len())

	w.Set("count", 5)
	w.Set("name", "alice")

	v, ok := w.Get("count")
	require.True(t, ok)
	assert.Equal(t, 5, v)

	w.Set("count", 6)
	v, _ = w.Get("count")
	assert.Equal(t, 6, v)

	w.Delete("count")
	_, ok = w.Get("count")
	assert.False(t, ok)
	assert.Equal(t, 1, w.Len())
}

func TestWorldSnapshot(t *testing.T) {
	w := NewWorld()
	assert.Equal(t, "{}", w.Snapshot())

	w.Set("b", 2)
	w.Set("a", "one")
	// Keys are sorted so the snapshot is stable across runs.
	assert.Equal(t, "{a: one, b: 2}", w.Snapshot())
}

type panickyValue struct{}

func (panickyValue) String() string {
	panic("cannot render")
}

func TestWorldSnapshotBestEffort(t *testing.T) {
	w := NewWorld()
	w.Set("bad", panickyValue{})
	w.Set("good", 1)

	// A value whose formatting panics must not take the run down.
	assert.Equal(t, "{bad: <unprintable>, good: 1}", w.Snapshot())
}
