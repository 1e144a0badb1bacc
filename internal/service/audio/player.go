package audio

import (
	"sync"
	"time"
)

// PlaybackState is a snapshot of the player.
type PlaybackState struct {
	Ref      string  `json:"ref,omitempty"`
	Playing  bool    `json:"playing"`
	Progress float64 `json:"progress"` // 0-100
}

// DurationLookup resolves a clip ref to its length in seconds.
type DurationLookup func(ref string) (float64, error)

// Player tracks playback of at most one clip. It does not produce sound; the
// client renders audio and the player keeps the authoritative state.
type Player struct {
	lookup DurationLookup
	now    func() time.Time

	mu        sync.Mutex
	ref       string
	duration  float64
	playing   bool
	startedAt time.Time
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithClock overrides the time source.
func WithClock(now func() time.Time) PlayerOption {
	return func(p *Player) { p.now = now }
}

func NewPlayer(lookup DurationLookup, opts ...PlayerOption) *Player {
	p := &Player{lookup: lookup, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Play starts ref from the beginning. Calling Play on the clip that is
// currently playing pauses it instead.
func (p *Player) Play(ref string) (PlaybackState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.advance()
	if p.playing && p.ref == ref {
		p.playing = false
		return p.state(), nil
	}

	duration, err := p.lookup(ref)
	if err != nil {
		return p.state(), err
	}

	p.ref = ref
	p.duration = duration
	p.playing = true
	p.startedAt = p.now()
	return p.state(), nil
}

// Pause stops playback and resets progress. The current clip is kept.
func (p *Player) Pause() PlaybackState {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.advance()
	p.playing = false
	return p.state()
}

// State returns the current playback snapshot.
func (p *Player) State() PlaybackState {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.advance()
	return p.state()
}

// Stop clears the player.
func (p *Player) Stop() {
	p.mu.Lock()
	p.clear()
	p.mu.Unlock()
}

// advance 处理播放结束：清空当前音频与进度。
func (p *Player) advance() {
	if !p.playing {
		return
	}
	if p.now().Sub(p.startedAt).Seconds() >= p.duration {
		p.clear()
	}
}

func (p *Player) clear() {
	p.ref = ""
	p.duration = 0
	p.playing = false
	p.startedAt = time.Time{}
}

func (p *Player) state() PlaybackState {
	st := PlaybackState{Ref: p.ref, Playing: p.playing}
	if p.playing && p.duration > 0 {
		elapsed := p.now().Sub(p.startedAt).Seconds()
		st.Progress = min(elapsed/p.duration*100, 100)
	}
	return st
}
