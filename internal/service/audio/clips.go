package audio

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrClipNotFound 引用的音频不存在或已被释放。
var ErrClipNotFound = errors.New("clip not found")

// Clip is a playable piece of audio.
type Clip struct {
	Data            []byte
	MimeType        string
	DurationSeconds float64
}

// ClipStore keeps recorded and synthesized clips in memory under opaque refs.
type ClipStore struct {
	mu    sync.RWMutex
	clips map[string]Clip
}

func NewClipStore() *ClipStore {
	return &ClipStore{clips: make(map[string]Clip)}
}

// Put stores clip and returns its ref.
func (s *ClipStore) Put(clip Clip) string {
	ref := uuid.NewString()

	s.mu.Lock()
	s.clips[ref] = clip
	s.mu.Unlock()

	return ref
}

func (s *ClipStore) Get(ref string) (Clip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clip, ok := s.clips[ref]
	if !ok {
		return Clip{}, ErrClipNotFound
	}
	return clip, nil
}

// Delete releases refs. Unknown refs are ignored.
func (s *ClipStore) Delete(refs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ref := range refs {
		delete(s.clips, ref)
	}
}

// Len reports the number of stored clips.
func (s *ClipStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clips)
}
