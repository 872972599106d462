package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/objectives/pkg/core"
)

func TestMarkerBuffer_SpawnDestroyOrder(t *testing.T) {
	b := NewMarkerBuffer()

	h1, err := b.Spawn(core.MarkerSpec{Description: "a", Kind: core.MarkerNumbered, Number: 1})
	require.NoError(t, err)
	h2, err := b.Spawn(core.MarkerSpec{Description: "b"})
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
	assert.Equal(t, 2, b.Live())

	require.NoError(t, b.Destroy(h1))
	assert.Equal(t, 1, b.Live())

	cmds := b.Pull(0)
	require.Len(t, cmds, 3)
	assert.Equal(t, core.MarkerSpawn, cmds[0].Op)
	assert.Equal(t, h1, cmds[0].Handle)
	assert.Equal(t, 1, cmds[0].Spec.Number)
	assert.Equal(t, core.MarkerSpawn, cmds[1].Op)
	assert.Equal(t, core.MarkerDestroy, cmds[2].Op)
	assert.Nil(t, cmds[2].Spec)
	assert.Equal(t, 0, b.Pending())
}

func TestMarkerBuffer_DestroyUnknown(t *testing.T) {
	b := NewMarkerBuffer()

	assert.ErrorIs(t, b.Destroy("nope"), ErrUnknownHandle)
	assert.Equal(t, 0, b.Pending())
}

func TestMarkerBuffer_PullPaged(t *testing.T) {
	b := NewMarkerBuffer()
	for i := 0; i < 5; i++ {
		_, _ = b.Spawn(core.MarkerSpec{})
	}

	assert.Len(t, b.Pull(2), 2)
	assert.Equal(t, 3, b.Pending())
	assert.Len(t, b.Pull(10), 3)
}

func TestDefaults(t *testing.T) {
	var s Settings = Defaults{}
	assert.Equal(t, 7, s.Int(0, "x", 7))
	assert.True(t, s.Bool(1, "x", true))
	assert.Equal(t, 1.5, s.Float(2, "x", 1.5))
	assert.Equal(t, "d", s.String(3, "x", "d"))
}
