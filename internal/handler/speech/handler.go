package speech

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	chatHandler "github.com/zhouzirui/sakhi/backend/internal/handler/chat"
	"github.com/zhouzirui/sakhi/backend/internal/logging"
	"github.com/zhouzirui/sakhi/backend/internal/model/speech"
	"github.com/zhouzirui/sakhi/backend/internal/service/companion"
	speechsvc "github.com/zhouzirui/sakhi/backend/internal/service/speech"
	"github.com/zhouzirui/sakhi/backend/pkg/utils"
)

const maxAudioBytes = 32 << 20

// Handler 语音直通接口的HTTP处理器
type Handler struct {
	speechSvc speechsvc.Provider
	language  string
	validate  *validator.Validate
	logger    *slog.Logger
}

// New 创建语音处理器. language is the default recognition/synthesis language.
func New(speechSvc speechsvc.Provider, language string) *Handler {
	return &Handler{
		speechSvc: speechSvc,
		language:  language,
		validate:  validator.New(),
		logger:    logging.Component("handler.speech"),
	}
}

// RegisterRoutes 注册语音相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/speech", func(sr chi.Router) {
		sr.Post("/transcribe", h.handleTranscribe)
		sr.Post("/synthesize", h.handleSynthesize)
		sr.Get("/health", h.handleHealth)
	})
}

func (h *Handler) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioBytes)
	if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
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
	if buf.Len() == 0 {
		utils.RespondError(w, http.StatusBadRequest, "audio file is empty")
		return
	}

	language := r.FormValue("language")
	if language == "" {
		language = h.language
	}
	mimeType := chatHandler.MimeType(header.Header.Get("Content-Type"), header.Filename)

	resp, err := h.speechSvc.TranscribeBuffer(r.Context(), r.FormValue("sessionId"), buf.Bytes(), companion.FormatFromMime(mimeType), language)
	if err != nil {
		h.logger.Error("transcription failed", "error", err)
		utils.RespondError(w, http.StatusBadGateway, "speech recognition failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	var req speech.TTSRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Text = strings.TrimSpace(req.Text)
	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			utils.RespondError(w, http.StatusBadRequest, strings.ToLower(verrs[0].Field())+" is invalid")
			return
		}
		utils.RespondError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Language == "" {
		req.Language = h.language
	}

	resp, err := h.speechSvc.SynthesizeToBuffer(r.Context(), req.SessionID, req.Text, req.Voice, req.Language)
	if err != nil {
		h.logger.Error("synthesis failed", "error", err)
		utils.RespondError(w, http.StatusBadGateway, "speech synthesis failed")
		return
	}

	if len(resp.AudioData) == 0 {
		utils.RespondJSON(w, http.StatusOK, resp)
		return
	}

	contentType, ext := audioContentType(resp.Format)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(resp.AudioData)))
	w.Header().Set("Content-Disposition", "attachment; filename=speech."+ext)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(resp.AudioData); err != nil {
		h.logger.Warn("failed to write audio response", "error", err)
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "speech",
	})
}

// audioContentType maps a provider format name to a media type and file
// extension. mp3 has no audio/mp3 registration, it is audio/mpeg.
func audioContentType(format string) (string, string) {
	switch format = strings.ToLower(strings.TrimSpace(format)); format {
	case "", "mp3", "mpeg":
		return companion.SynthesizedMimeType, "mp3"
	default:
		return "audio/" + format, format
	}
}
