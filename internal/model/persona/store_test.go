package persona

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(Seed())

	p, ok := store.FindByID(DefaultID)
	require.True(t, ok)
	assert.Equal(t, "Sakhi", p.Name)
	assert.NotEmpty(t, p.Instruction)

	_, ok = store.FindByID("missing")
	assert.False(t, ok)

	resolved, ok := store.Resolve("missing")
	require.True(t, ok)
	assert.Equal(t, DefaultID, resolved.ID)

	list := store.List()
	list[0].Name = "changed"
	assert.Equal(t, "Sakhi", store.List()[0].Name)
}

func TestResolveEmptyStore(t *testing.T) {
	_, ok := NewMemoryStore(nil).Resolve("")
	assert.False(t, ok)
}
