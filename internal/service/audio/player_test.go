package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestPlayer(t *testing.T) (*Player, *ClipStore, *fakeClock) {
	t.Helper()
	store := NewClipStore()
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	player := NewPlayer(func(ref string) (float64, error) {
		clip, err := store.Get(ref)
		if err != nil {
			return 0, err
		}
		return clip.DurationSeconds, nil
	}, WithClock(clock.now))
	return player, store, clock
}

func TestPlayerProgressAndEnd(t *testing.T) {
	player, store, clock := newTestPlayer(t)
	ref := store.Put(Clip{Data: []byte("x"), DurationSeconds: 4})

	st, err := player.Play(ref)
	require.NoError(t, err)
	assert.True(t, st.Playing)
	assert.Equal(t, ref, st.Ref)
	assert.Equal(t, 0.0, st.Progress)

	clock.advance(time.Second)
	assert.InDelta(t, 25.0, player.State().Progress, 1e-9)

	clock.advance(3 * time.Second)
	st = player.State()
	assert.False(t, st.Playing)
	assert.Empty(t, st.Ref)
	assert.Equal(t, 0.0, st.Progress)
}

func TestPlayerToggleOnSameClip(t *testing.T) {
	player, store, clock := newTestPlayer(t)
	ref := store.Put(Clip{DurationSeconds: 10})

	_, err := player.Play(ref)
	require.NoError(t, err)
	clock.advance(2 * time.Second)

	st, err := player.Play(ref)
	require.NoError(t, err)
	assert.False(t, st.Playing)
	assert.Equal(t, ref, st.Ref)
	assert.Equal(t, 0.0, st.Progress)

	// 暂停后再次播放从头开始
	st, err = player.Play(ref)
	require.NoError(t, err)
	assert.True(t, st.Playing)
	assert.Equal(t, 0.0, st.Progress)
}

func TestPlayerSwitchClip(t *testing.T) {
	player, store, clock := newTestPlayer(t)
	a := store.Put(Clip{DurationSeconds: 10})
	b := store.Put(Clip{DurationSeconds: 5})

	_, err := player.Play(a)
	require.NoError(t, err)
	clock.advance(time.Second)

	st, err := player.Play(b)
	require.NoError(t, err)
	assert.Equal(t, b, st.Ref)
	assert.True(t, st.Playing)
	assert.Equal(t, 0.0, st.Progress)
}

func TestPlayerPauseResetsProgress(t *testing.T) {
	player, store, clock := newTestPlayer(t)
	ref := store.Put(Clip{DurationSeconds: 10})

	_, err := player.Play(ref)
	require.NoError(t, err)
	clock.advance(5 * time.Second)

	st := player.Pause()
	assert.False(t, st.Playing)
	assert.Equal(t, ref, st.Ref)
	assert.Equal(t, 0.0, st.Progress)
}

func TestPlayerUnknownClip(t *testing.T) {
	player, _, _ := newTestPlayer(t)

	_, err := player.Play("missing")
	assert.ErrorIs(t, err, ErrClipNotFound)
	assert.False(t, player.State().Playing)
}

func TestClipStore(t *testing.T) {
	store := NewClipStore()
	ref := store.Put(Clip{Data: []byte("abc"), MimeType: "audio/mpeg", DurationSeconds: 1})

	clip, err := store.Get(ref)
	require.NoError(t, err)
	assert.Equal(t, "audio/mpeg", clip.MimeType)
	assert.Equal(t, 1, store.Len())

	store.Delete(ref, "unknown")
	_, err = store.Get(ref)
	assert.ErrorIs(t, err, ErrClipNotFound)
}
