package chat

import "time"

// Author 标识消息的发送方。
type Author string

const (
	AuthorUser      Author = "user"
	AuthorCompanion Author = "companion"
)

// Kind distinguishes typed text from recorded voice.
type Kind string

const (
	KindText  Kind = "text"
	KindAudio Kind = "audio"
)

// Message is one turn in a session transcript. ID is a per-session ordinal
// starting at 1.
type Message struct {
	ID              int64     `json:"id"`
	Author          Author    `json:"author"`
	Kind            Kind      `json:"kind"`
	Text            string    `json:"text,omitempty"`
	AudioRef        string    `json:"audioRef,omitempty"`
	DurationSeconds float64   `json:"durationSeconds,omitempty"`
	Streaming       bool      `json:"streaming,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// IsAudio reports whether the message carries a clip.
func (m Message) IsAudio() bool {
	return m.Kind == KindAudio
}
