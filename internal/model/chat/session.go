package chat

import "time"

// Status is the session lifecycle state.
type Status string

const (
	StatusIdle             Status = "idle"
	StatusRecording        Status = "recording"
	StatusAwaitingResponse Status = "awaitingResponse"
	StatusFailed           Status = "failed"
)

// Session captures a transient anonymous conversation.
type Session struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	Mode      string    `json:"mode"`
	Status    Status    `json:"status"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
}

// Clone returns a deep copy safe to hand to callers.
func (s Session) Clone() Session {
	out := s
	out.Messages = append([]Message(nil), s.Messages...)
	return out
}

// Last returns the newest message, if any.
func (s Session) Last() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}
