package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderLifecycle(t *testing.T) {
	r := NewRecorder(RecorderConfig{Enabled: true, MaxBytes: 64000})

	handle, err := r.Start("")
	require.NoError(t, err)

	require.NoError(t, r.Write(handle, make([]byte, 16000)))
	require.NoError(t, r.Write(handle, make([]byte, 8000)))

	blob, err := r.Stop(handle)
	require.NoError(t, err)
	assert.Len(t, blob.Data, 24000)
	assert.Equal(t, DefaultMimeType, blob.MimeType)
	assert.InDelta(t, 1.5, blob.DurationSeconds, 1e-9)

	_, active := r.Active()
	assert.False(t, active)

	_, err = r.Stop(handle)
	assert.ErrorIs(t, err, ErrNoRecording)
}

func TestRecorderDisabled(t *testing.T) {
	r := NewRecorder(RecorderConfig{Enabled: false})

	_, err := r.Start("audio/webm")
	assert.ErrorIs(t, err, ErrCaptureUnavailable)
}

func TestRecorderRestartDiscardsPrevious(t *testing.T) {
	r := NewRecorder(RecorderConfig{Enabled: true})

	first, err := r.Start("audio/webm")
	require.NoError(t, err)
	require.NoError(t, r.Write(first, []byte("old")))

	second, err := r.Start("audio/ogg")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	assert.ErrorIs(t, r.Write(first, []byte("x")), ErrNoRecording)

	require.NoError(t, r.Write(second, []byte("new")))
	blob, err := r.Stop(second)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), blob.Data)
	assert.Equal(t, "audio/ogg", blob.MimeType)
}

func TestRecorderSizeLimit(t *testing.T) {
	r := NewRecorder(RecorderConfig{Enabled: true, MaxBytes: 4})

	handle, err := r.Start("")
	require.NoError(t, err)
	require.NoError(t, r.Write(handle, []byte("abc")))
	assert.ErrorIs(t, r.Write(handle, []byte("de")), ErrRecordingTooLarge)

	blob, err := r.Stop(handle)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), blob.Data)
}

func TestRecorderCancel(t *testing.T) {
	r := NewRecorder(RecorderConfig{Enabled: true})

	handle, err := r.Start("")
	require.NoError(t, err)
	r.Cancel()

	_, err = r.Stop(handle)
	assert.ErrorIs(t, err, ErrNoRecording)
}

func TestDurationFromSize(t *testing.T) {
	assert.Equal(t, 0.0, DurationFromSize(0))
	assert.Equal(t, 2.0, DurationFromSize(32000))
	assert.InDelta(t, 0.5, DurationFromSize(8000), 1e-9)
}
