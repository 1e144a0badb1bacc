package audio

import (
	"bytes"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrCaptureUnavailable 表示当前环境无法录音（未启用或设备不可用）。
	ErrCaptureUnavailable = errors.New("audio capture unavailable")
	ErrRecordingTooLarge  = errors.New("recording exceeds size limit")
	ErrNoRecording        = errors.New("no active recording")
)

// BytesPerSecond 用于从录音大小估算时长。
const BytesPerSecond = 16000

// DefaultMimeType is used when the caller does not name a container.
const DefaultMimeType = "audio/webm"

// DurationFromSize estimates a clip length in seconds from its byte size.
func DurationFromSize(n int) float64 {
	return float64(n) / BytesPerSecond
}

// Blob is a finished recording.
type Blob struct {
	Data            []byte
	MimeType        string
	DurationSeconds float64
}

// RecorderConfig controls capture availability and limits.
type RecorderConfig struct {
	Enabled  bool
	MaxBytes int
}

// Recorder buffers one recording at a time. Starting a new recording discards
// the previous one.
type Recorder struct {
	cfg RecorderConfig

	mu     sync.Mutex
	handle string
	mime   string
	buf    bytes.Buffer
}

// NewRecorder returns a recorder. MaxBytes <= 0 means unlimited.
func NewRecorder(cfg RecorderConfig) *Recorder {
	return &Recorder{cfg: cfg}
}

// Start begins a recording and returns its handle.
func (r *Recorder) Start(mimeType string) (string, error) {
	if !r.cfg.Enabled {
		return "", ErrCaptureUnavailable
	}

	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		mimeType = DefaultMimeType
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.handle = uuid.NewString()
	r.mime = mimeType
	r.buf.Reset()
	return r.handle, nil
}

// Write appends a chunk to the active recording.
func (r *Recorder) Write(handle string, chunk []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.handle == "" || r.handle != handle {
		return ErrNoRecording
	}
	if r.cfg.MaxBytes > 0 && r.buf.Len()+len(chunk) > r.cfg.MaxBytes {
		return ErrRecordingTooLarge
	}
	r.buf.Write(chunk)
	return nil
}

// Stop finishes the recording and returns its data.
func (r *Recorder) Stop(handle string) (Blob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.handle == "" || r.handle != handle {
		return Blob{}, ErrNoRecording
	}

	data := append([]byte(nil), r.buf.Bytes()...)
	blob := Blob{
		Data:            data,
		MimeType:        r.mime,
		DurationSeconds: DurationFromSize(len(data)),
	}
	r.reset()
	return blob, nil
}

// Cancel discards the active recording, if any.
func (r *Recorder) Cancel() {
	r.mu.Lock()
	r.reset()
	r.mu.Unlock()
}

// Active returns the handle of the running recording.
func (r *Recorder) Active() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handle, r.handle != ""
}

func (r *Recorder) reset() {
	r.handle = ""
	r.mime = ""
	r.buf.Reset()
}
