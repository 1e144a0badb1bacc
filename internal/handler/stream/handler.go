package stream

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	chatHandler "github.com/zhouzirui/sakhi/backend/internal/handler/chat"
	"github.com/zhouzirui/sakhi/backend/internal/logging"
	"github.com/zhouzirui/sakhi/backend/internal/model/chat"
	chatService "github.com/zhouzirui/sakhi/backend/internal/service/chat"
	"github.com/zhouzirui/sakhi/backend/pkg/utils"
)

// Handler streams a text turn to the client as Server-Sent Events.
type Handler struct {
	chatSvc *chatService.Service
	logger  *slog.Logger
}

func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc, logger: logging.Component("handler.stream")}
}

// StreamResponse is the payload of every SSE event.
type StreamResponse struct {
	SessionID string        `json:"sessionId,omitempty"`
	Message   *chat.Message `json:"message,omitempty"`
	Delta     string        `json:"delta,omitempty"`
	Status    chat.Status   `json:"status,omitempty"`
	Session   *chat.Session `json:"session,omitempty"`
	Error     string        `json:"error,omitempty"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/sessions/{sessionID}/stream", h.handleStream)
}

// handleStream sends start, then every session event (message, delta,
// update, status) as it happens, then end. Errors detected before the first
// event are plain JSON responses.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	message := r.URL.Query().Get("message")
	if strings.TrimSpace(message) == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	started := false
	// 客户端断开后写入失败即可，回合继续在会话上下文中完成
	send := func(event string, payload StreamResponse) {
		if err := utils.SendSSEEvent(w, flusher, event, payload); err != nil {
			h.logger.Debug("sse write failed", "session", sessionID, "event", event, "error", err)
		}
	}
	begin := func() {
		if started {
			return
		}
		started = true
		utils.SetupSSEHeaders(w)
		w.WriteHeader(http.StatusOK)
		send("start", StreamResponse{SessionID: sessionID})
	}

	observer := func(ev chat.Event) {
		begin()
		send(string(ev.Type), StreamResponse{
			SessionID: ev.SessionID,
			Message:   ev.Message,
			Delta:     ev.Delta,
			Status:    ev.Status,
		})
	}

	session, err := h.chatSvc.SendText(r.Context(), sessionID, message, observer)
	if err != nil {
		if !started {
			utils.RespondError(w, chatHandler.StatusFor(err), chatHandler.Message(err))
			return
		}
		send("error", StreamResponse{SessionID: sessionID, Error: chatHandler.Message(err)})
		return
	}

	begin()
	send("end", StreamResponse{SessionID: sessionID, Session: &session})
	h.logger.Info("stream completed", "session", sessionID, "messages", len(session.Messages))
}
