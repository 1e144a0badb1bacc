package speech

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	chatHandler "github.com/zhouzirui/sakhi/backend/internal/handler/chat"
	"github.com/zhouzirui/sakhi/backend/internal/logging"
	"github.com/zhouzirui/sakhi/backend/internal/model/chat"
	chatservice "github.com/zhouzirui/sakhi/backend/internal/service/chat"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	writeWait  = 10 * time.Second
)

// Inbound message types.
const (
	TypeText         = "text"
	TypeRecordStart  = "record_start"
	TypeAudio        = "audio"
	TypeRecordStop   = "record_stop"
	TypeRecordCancel = "record_cancel"
	TypePlay         = "play"
	TypePause        = "pause"
	TypeConfig       = "config"
)

// WebSocketHandler drives one session over a websocket: text turns, voice
// note capture and clip playback. Session events are pushed as they happen.
type WebSocketHandler struct {
	chatSvc  *chatservice.Service
	upgrader websocket.Upgrader
	conns    *connRegistry
	logger   *slog.Logger
}

func NewWebSocketHandler(chatSvc *chatservice.Service) *WebSocketHandler {
	return &WebSocketHandler{
		chatSvc: chatSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(*http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		conns:  newConnRegistry(),
		logger: logging.Component("handler.ws"),
	}
}

// RegisterWebSocketRoutes 注册WebSocket路由
func (h *WebSocketHandler) RegisterWebSocketRoutes(r chi.Router) {
	r.Get("/sessions/{sessionID}/ws", h.handleWebSocket)
}

// Shutdown closes every open connection with a going-away frame.
func (h *WebSocketHandler) Shutdown() error {
	h.conns.closeAll()
	return nil
}

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type textMessage struct {
	Text string `json:"text"`
}

// recordMessage covers record_start, audio and record_stop payloads.
type recordMessage struct {
	MimeType  string `json:"mimeType"`
	AudioData []byte `json:"audioData"`
}

type playMessage struct {
	Ref string `json:"ref"`
}

type outgoingMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// wsConn serializes writes; turns run off the read loop and write concurrently.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

func (c *wsConn) close(code int, reason string) {
	_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
	_ = c.conn.Close()
}

type connRegistry struct {
	mu    sync.Mutex
	conns map[*wsConn]struct{}
}

func newConnRegistry() *connRegistry {
	return &connRegistry{conns: make(map[*wsConn]struct{})}
}

func (r *connRegistry) add(c *wsConn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c] = struct{}{}
}

func (r *connRegistry) remove(c *wsConn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, c)
}

func (r *connRegistry) closeAll() {
	r.mu.Lock()
	conns := make([]*wsConn, 0, len(r.conns))
	for c := range r.conns {
		conns = append(conns, c)
	}
	r.mu.Unlock()

	for _, c := range conns {
		c.close(websocket.CloseGoingAway, "server shutting down")
	}
}

func (r *connRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// session binds one connection to its chat session.
type session struct {
	id   string
	conn *wsConn
	h    *WebSocketHandler
	// turns 跟踪后台回合，连接关闭前等待其结束
	turns sync.WaitGroup
}

func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	snapshot, err := h.chatSvc.GetSession(r.Context(), sessionID)
	if err != nil {
		http.Error(w, chatHandler.Message(err), chatHandler.StatusFor(err))
		return
	}

	raw, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", "session", sessionID, "error", err)
		return
	}

	conn := &wsConn{conn: raw}
	h.conns.add(conn)
	defer func() {
		h.conns.remove(conn)
		_ = raw.Close()
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := &session{id: sessionID, conn: conn, h: h}
	defer s.turns.Wait()

	_ = raw.SetReadDeadline(time.Now().Add(pongWait))
	raw.SetPongHandler(func(string) error {
		return raw.SetReadDeadline(time.Now().Add(pongWait))
	})

	go h.pingLoop(ctx, conn)

	h.logger.Info("websocket connected", "session", sessionID)
	s.result(map[string]any{"type": "connected", "session": snapshot})

	for {
		msgType, payload, err := raw.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read error", "session", sessionID, "error", err)
			}
			return
		}
		_ = raw.SetReadDeadline(time.Now().Add(pongWait))

		// 二进制帧视为录音数据块
		if msgType == websocket.BinaryMessage {
			s.appendChunk(payload)
			continue
		}

		var msg inboundMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.fail("invalid message")
			continue
		}
		s.handle(ctx, &msg)
	}
}

func (s *session) handle(ctx context.Context, msg *inboundMessage) {
	svc := s.h.chatSvc

	switch msg.Type {
	case TypeText:
		var in textMessage
		if !s.decode(msg.Data, &in) {
			return
		}
		s.runTurn(func() error {
			_, err := svc.SendText(ctx, s.id, in.Text, s.observe)
			return err
		})

	case TypeRecordStart:
		var in recordMessage
		if !s.decode(msg.Data, &in) {
			return
		}
		if err := svc.StartRecording(s.id, in.MimeType, s.observe); err != nil {
			s.serviceError(err)
		}

	case TypeAudio:
		var in recordMessage
		if !s.decode(msg.Data, &in) {
			return
		}
		s.appendChunk(in.AudioData)

	case TypeRecordStop:
		var in recordMessage
		if !s.decode(msg.Data, &in) {
			return
		}
		if len(in.AudioData) > 0 {
			s.appendChunk(in.AudioData)
		}
		s.runTurn(func() error {
			_, err := svc.StopRecording(ctx, s.id, true, s.observe)
			return err
		})

	case TypeRecordCancel:
		if _, err := svc.StopRecording(ctx, s.id, false, s.observe); err != nil {
			s.serviceError(err)
		}

	case TypePlay:
		var in playMessage
		if !s.decode(msg.Data, &in) {
			return
		}
		state, err := svc.Play(s.id, in.Ref)
		if err != nil {
			s.serviceError(err)
			return
		}
		s.result(map[string]any{"type": "playback", "state": state})

	case TypePause:
		state, err := svc.Pause(s.id)
		if err != nil {
			s.serviceError(err)
			return
		}
		s.result(map[string]any{"type": "playback", "state": state})

	case TypeConfig:
		snapshot, err := svc.GetSession(ctx, s.id)
		if err != nil {
			s.serviceError(err)
			return
		}
		state, _ := svc.Playback(s.id)
		s.result(map[string]any{
			"type":     "config",
			"mode":     snapshot.Mode,
			"status":   snapshot.Status,
			"playback": state,
		})

	default:
		s.fail("unsupported message type: " + msg.Type)
	}
}

// runTurn executes a blocking turn off the read loop so playback and cancel
// messages keep flowing.
func (s *session) runTurn(fn func() error) {
	s.turns.Add(1)
	go func() {
		defer s.turns.Done()
		if err := fn(); err != nil {
			s.serviceError(err)
		}
	}()
}

func (s *session) appendChunk(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	if err := s.h.chatSvc.AppendRecording(s.id, chunk); err != nil {
		s.serviceError(err)
	}
}

func (s *session) decode(raw json.RawMessage, v any) bool {
	if len(raw) == 0 {
		return true
	}
	if err := json.Unmarshal(raw, v); err != nil {
		s.fail("invalid payload")
		return false
	}
	return true
}

func (s *session) observe(ev chat.Event) {
	s.send(outgoingMessage{Type: "event", SessionID: s.id, Data: ev, Timestamp: time.Now().Unix()})
}

func (s *session) result(data map[string]any) {
	s.send(outgoingMessage{Type: "result", SessionID: s.id, Data: data, Timestamp: time.Now().Unix()})
}

func (s *session) serviceError(err error) {
	s.fail(chatHandler.Message(err))
}

func (s *session) fail(message string) {
	s.send(outgoingMessage{Type: "error", SessionID: s.id, Data: map[string]string{"message": message}, Timestamp: time.Now().Unix()})
}

func (s *session) send(msg outgoingMessage) {
	if err := s.conn.writeJSON(msg); err != nil {
		s.h.logger.Debug("websocket write failed", "session", s.id, "type", msg.Type, "error", err)
	}
}

// pingLoop 定期发送ping消息
func (h *WebSocketHandler) pingLoop(ctx context.Context, conn *wsConn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
