package chat

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/sakhi/backend/internal/analysis/rules"
	chatmodel "github.com/zhouzirui/sakhi/backend/internal/model/chat"
	chatservice "github.com/zhouzirui/sakhi/backend/internal/service/chat"
	"github.com/zhouzirui/sakhi/backend/internal/service/companion"
)

func setupRouter(opts ...chatservice.Option) (*chi.Mux, *chatservice.Service) {
	gen := companion.NewLocal(rules.NewMatcher(rules.DefaultTable(), rules.WithSeed(1)), 0, 0)
	chatSvc := chatservice.NewService(gen, opts...)

	r := chi.NewRouter()
	New(chatSvc).RegisterRoutes(r)
	return r, chatSvc
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func decodeSession(t *testing.T, resp *httptest.ResponseRecorder) chatmodel.Session {
	t.Helper()
	var session chatmodel.Session
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &session))
	return session
}

func TestStartSession(t *testing.T) {
	r, _ := setupRouter()

	resp := do(t, r, http.MethodPost, "/sessions", map[string]string{"topic": "Stressed"})
	require.Equal(t, http.StatusCreated, resp.Code)

	session := decodeSession(t, resp)
	assert.Equal(t, "Stressed", session.Topic)
	assert.Equal(t, chatmodel.StatusIdle, session.Status)
	require.Len(t, session.Messages, 1)
	assert.Equal(t, chatmodel.AuthorCompanion, session.Messages[0].Author)
}

func TestStartSessionWithoutBody(t *testing.T) {
	r, _ := setupRouter()
	resp := do(t, r, http.MethodPost, "/sessions", nil)
	assert.Equal(t, http.StatusCreated, resp.Code)
}

func TestStartSessionNotConfigured(t *testing.T) {
	r, _ := setupRouter(chatservice.WithInitError(errors.New("missing key")))
	resp := do(t, r, http.MethodPost, "/sessions", map[string]string{})
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}

func TestSendTextStatusCodes(t *testing.T) {
	r, _ := setupRouter()
	session := decodeSession(t, do(t, r, http.MethodPost, "/sessions", map[string]string{}))
	path := "/sessions/" + session.ID + "/messages"

	resp := do(t, r, http.MethodPost, path, map[string]string{"text": "I feel lonely"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decodeSession(t, resp).Messages, 3)

	resp = do(t, r, http.MethodPost, path, map[string]string{"text": "  "})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = do(t, r, http.MethodPost, path, map[string]string{"unknown": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = do(t, r, http.MethodPost, "/sessions/missing/messages", map[string]string{"text": "hi"})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestTranscript(t *testing.T) {
	r, _ := setupRouter()
	session := decodeSession(t, do(t, r, http.MethodPost, "/sessions", map[string]string{}))
	path := "/sessions/" + session.ID + "/messages"
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, path, map[string]string{"text": "thanks"}).Code)

	resp := do(t, r, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var messages []chatmodel.Message
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &messages))
	require.Len(t, messages, 3)
	assert.Equal(t, chatmodel.AuthorUser, messages[1].Author)
	assert.Equal(t, "thanks", messages[1].Text)
	assert.Equal(t, "You're very welcome. I'm always here if you need to talk.", messages[2].Text)

	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/sessions/missing/messages", nil).Code)
}

func TestSendTextBusy(t *testing.T) {
	r, svc := setupRouter()
	session := decodeSession(t, do(t, r, http.MethodPost, "/sessions", map[string]string{}))
	require.NoError(t, svc.StartRecording(session.ID, "", nil))

	resp := do(t, r, http.MethodPost, "/sessions/"+session.ID+"/messages", map[string]string{"text": "hi"})
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestSendAudioAndFetchClip(t *testing.T) {
	r, _ := setupRouter()
	session := decodeSession(t, do(t, r, http.MethodPost, "/sessions", map[string]string{}))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="audio"; filename="note.ogg"`)
	h.Set("Content-Type", "audio/ogg")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte("OggS-voice"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("duration", "4.5"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/sessions/"+session.ID+"/audio", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)

	updated := decodeSession(t, resp)
	require.Len(t, updated.Messages, 3)
	voice := updated.Messages[1]
	assert.True(t, voice.IsAudio())
	assert.InDelta(t, 4.5, voice.DurationSeconds, 0.001)
	assert.Equal(t, rules.DefaultTable().VoiceNoteReply, updated.Messages[2].Text)

	clip := do(t, r, http.MethodGet, "/clips/"+voice.AudioRef, nil)
	require.Equal(t, http.StatusOK, clip.Code)
	assert.Equal(t, "audio/ogg", clip.Header().Get("Content-Type"))
	assert.Equal(t, "OggS-voice", clip.Body.String())

	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/clips/nope", nil).Code)
}

func TestEndSession(t *testing.T) {
	r, _ := setupRouter()
	session := decodeSession(t, do(t, r, http.MethodPost, "/sessions", map[string]string{}))

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/sessions/"+session.ID, nil).Code)
	assert.Equal(t, http.StatusNoContent, do(t, r, http.MethodDelete, "/sessions/"+session.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/sessions/"+session.ID, nil).Code)
}

func TestMimeType(t *testing.T) {
	assert.Equal(t, "audio/ogg", MimeType("audio/ogg; codecs=opus", "x.bin"))
	assert.Equal(t, "audio/mpeg", MimeType("application/octet-stream", "a.MP3"))
	assert.Equal(t, "audio/webm", MimeType("", "blob"))
}
