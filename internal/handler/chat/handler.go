package chat

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/sakhi/backend/internal/logging"
	"github.com/zhouzirui/sakhi/backend/internal/service/audio"
	chatService "github.com/zhouzirui/sakhi/backend/internal/service/chat"
	"github.com/zhouzirui/sakhi/backend/internal/service/companion"
	"github.com/zhouzirui/sakhi/backend/pkg/utils"
)

const maxUploadBytes = 32 << 20

// Handler 会话服务的HTTP处理器
type Handler struct {
	chatSvc *chatService.Service
	logger  *slog.Logger
}

func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc, logger: logging.Component("handler.chat")}
}

// RegisterRoutes 注册会话相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.handleStart)
	r.Route("/sessions/{sessionID}", func(sr chi.Router) {
		sr.Get("/", h.handleGet)
		sr.Delete("/", h.handleEnd)
		sr.Get("/messages", h.handleTranscript)
		sr.Post("/messages", h.handleSendText)
		sr.Post("/audio", h.handleSendAudio)
	})
	r.Get("/clips/{ref}", h.handleClip)
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Topic string `json:"topic"`
	}
	if r.ContentLength != 0 {
		if err := utils.DecodeJSON(r, &payload); err != nil && !errors.Is(err, io.EOF) {
			utils.RespondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	session, err := h.chatSvc.Start(r.Context(), payload.Topic, nil)
	if err != nil {
		h.logger.Warn("start session failed", "error", err)
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatSvc.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	messages, err := h.chatSvc.LoadTranscript(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, messages)
}

func (h *Handler) handleEnd(w http.ResponseWriter, r *http.Request) {
	if err := h.chatSvc.End(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSendText(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.chatSvc.SendText(r.Context(), chi.URLParam(r, "sessionID"), payload.Text, nil)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleSendAudio(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "failed to read audio")
		return
	}

	in := companion.AudioInput{
		Data:   buf.Bytes(),
		Format: MimeType(header.Header.Get("Content-Type"), header.Filename),
	}
	if raw := r.FormValue("duration"); raw != "" {
		if d, err := strconv.ParseFloat(raw, 64); err == nil && d > 0 {
			in.DurationSeconds = d
		}
	}

	session, err := h.chatSvc.SendAudio(r.Context(), chi.URLParam(r, "sessionID"), in, nil)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleClip(w http.ResponseWriter, r *http.Request) {
	clip, err := h.chatSvc.Clips().Get(chi.URLParam(r, "ref"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", clip.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(clip.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(clip.Data); err != nil {
		h.logger.Warn("failed to write clip", "error", err)
	}
}

// MimeType resolves an upload's media type from its part header, then its
// file extension.
func MimeType(contentType, filename string) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil && strings.HasPrefix(mt, "audio/") {
		return mt
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".ogg":
		return "audio/ogg"
	case ".m4a":
		return "audio/mp4"
	default:
		return audio.DefaultMimeType
	}
}
