package chat

// EventType 是会话观察者收到的通知类型。
type EventType string

const (
	// EventMessage 新消息追加到记录末尾
	EventMessage EventType = "message"
	// EventDelta 流式回复的增量文本
	EventDelta EventType = "delta"
	// EventUpdate 末尾消息被整体替换
	EventUpdate EventType = "update"
	EventStatus EventType = "status"
)

// Event notifies observers of a session change. Message is a copy.
type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"sessionId"`
	Message   *Message  `json:"message,omitempty"`
	Delta     string    `json:"delta,omitempty"`
	Status    Status    `json:"status,omitempty"`
}
