package chat

import (
	"errors"
	"net/http"

	"github.com/zhouzirui/sakhi/backend/internal/service/audio"
	chatService "github.com/zhouzirui/sakhi/backend/internal/service/chat"
	"github.com/zhouzirui/sakhi/backend/pkg/utils"
)

// StatusFor maps session errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, chatService.ErrSessionNotFound), errors.Is(err, audio.ErrClipNotFound):
		return http.StatusNotFound
	case errors.Is(err, chatService.ErrBlankInput):
		return http.StatusBadRequest
	case errors.Is(err, chatService.ErrSessionBusy), errors.Is(err, chatService.ErrNoRecording):
		return http.StatusConflict
	case errors.Is(err, chatService.ErrNotConfigured), errors.Is(err, chatService.ErrCaptureUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, audio.ErrRecordingTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// Message is the client-facing text for err. Internal failures stay generic.
func Message(err error) string {
	switch StatusFor(err) {
	case http.StatusNotFound:
		return "not found"
	case http.StatusBadRequest:
		return "message is blank"
	case http.StatusConflict:
		if errors.Is(err, chatService.ErrNoRecording) {
			return "no active recording"
		}
		return "session is busy"
	case http.StatusServiceUnavailable:
		if errors.Is(err, chatService.ErrCaptureUnavailable) {
			return "audio capture unavailable"
		}
		return "chat is not configured"
	case http.StatusRequestEntityTooLarge:
		return "recording too large"
	default:
		return "internal error"
	}
}

func respondServiceError(w http.ResponseWriter, err error) {
	utils.RespondError(w, StatusFor(err), Message(err))
}
