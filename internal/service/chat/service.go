package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/zhouzirui/sakhi/backend/internal/logging"
	"github.com/zhouzirui/sakhi/backend/internal/model/chat"
	"github.com/zhouzirui/sakhi/backend/internal/service/audio"
	"github.com/zhouzirui/sakhi/backend/internal/service/companion"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrBlankInput      = errors.New("message is blank")
	ErrSessionBusy     = errors.New("session is busy")
	ErrNotConfigured   = errors.New("chat is not configured")

	ErrCaptureUnavailable = audio.ErrCaptureUnavailable
	ErrNoRecording        = audio.ErrNoRecording
)

// Observer receives session events synchronously, in order.
type Observer func(chat.Event)

// Service owns the in-memory conversation sessions.
type Service struct {
	generator   companion.Generator
	initErr     error
	clips       *audio.ClipStore
	recorderCfg audio.RecorderConfig
	now         func() time.Time
	baseCtx     context.Context
	logger      *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*sessionState
}

type sessionState struct {
	mu        sync.Mutex
	session   chat.Session
	nextID    int64
	token     string
	recorder  *audio.Recorder
	recording string
	player    *audio.Player
	clipRefs  []string

	ctx    context.Context
	cancel context.CancelFunc
}

// Option configures a Service.
type Option func(*Service)

func WithClipStore(store *audio.ClipStore) Option {
	return func(s *Service) { s.clips = store }
}

// WithInitError makes Start fail with ErrNotConfigured, wrapping err.
func WithInitError(err error) Option {
	return func(s *Service) { s.initErr = err }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithRecorderConfig(cfg audio.RecorderConfig) Option {
	return func(s *Service) { s.recorderCfg = cfg }
}

// WithBaseContext sets the parent of every session context.
func WithBaseContext(ctx context.Context) Option {
	return func(s *Service) { s.baseCtx = ctx }
}

// NewService builds the session service around a turn generator. A nil
// generator leaves the service unconfigured.
func NewService(generator companion.Generator, opts ...Option) *Service {
	s := &Service{
		generator:   generator,
		clips:       audio.NewClipStore(),
		recorderCfg: audio.RecorderConfig{Enabled: true},
		now:         time.Now,
		baseCtx:     context.Background(),
		logger:      logging.Component("chat"),
		sessions:    make(map[string]*sessionState),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.generator == nil && s.initErr == nil {
		s.initErr = errors.New("no turn generator")
	}
	return s
}

// Mode reports the active strategy, empty when unconfigured.
func (s *Service) Mode() string {
	if s.generator == nil {
		return ""
	}
	return string(s.generator.Mode())
}

// Clips exposes the clip store backing audio refs.
func (s *Service) Clips() *audio.ClipStore {
	return s.clips
}

// Start opens a session and generates the companion greeting for topic.
func (s *Service) Start(ctx context.Context, topic string, obs Observer) (chat.Session, error) {
	if s.initErr != nil {
		return chat.Session{}, oops.In("chat").Wrapf(errors.Join(ErrNotConfigured, s.initErr), "failed to start session")
	}

	topic = strings.TrimSpace(topic)
	sctx, cancel := context.WithCancel(s.baseCtx)
	st := &sessionState{
		session: chat.Session{
			ID:        uuid.NewString(),
			Topic:     topic,
			Mode:      s.Mode(),
			Status:    chat.StatusAwaitingResponse,
			Messages:  make([]chat.Message, 0, 16),
			CreatedAt: s.now().UTC(),
		},
		recorder: audio.NewRecorder(s.recorderCfg),
		ctx:      sctx,
		cancel:   cancel,
	}
	st.player = audio.NewPlayer(s.clipDuration, audio.WithClock(s.now))

	token, err := s.generator.Open(sctx, st.session.ID, topic)
	if err != nil {
		cancel()
		return chat.Session{}, oops.In("chat").Wrapf(err, "failed to open companion context")
	}
	st.token = token

	s.mu.Lock()
	s.sessions[st.session.ID] = st
	s.mu.Unlock()

	s.logger.Info("session started", "session", st.session.ID, "mode", st.session.Mode, "topic", topic)
	notify(obs, s.statusEvent(st, chat.StatusAwaitingResponse))

	s.runTurn(st, companion.Turn{
		SessionID: st.session.ID,
		Token:     token,
		Text:      topic,
		Greeting:  true,
	}, nil, obs)

	return s.snapshot(st), nil
}

// SendText appends a user message and waits for the companion reply. Blank
// text or a busy session leave the session untouched.
func (s *Service) SendText(_ context.Context, sessionID, text string, obs Observer) (chat.Session, error) {
	st, err := s.lookup(sessionID)
	if err != nil {
		return chat.Session{}, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return chat.Session{}, ErrBlankInput
	}

	var events []chat.Event
	st.mu.Lock()
	if st.session.Status != chat.StatusIdle {
		st.mu.Unlock()
		return chat.Session{}, ErrSessionBusy
	}
	msg := s.appendLocked(st, chat.Message{Author: chat.AuthorUser, Kind: chat.KindText, Text: text})
	events = append(events, messageEvent(st, msg))
	events = append(events, s.setStatusLocked(st, chat.StatusAwaitingResponse))
	st.mu.Unlock()
	notify(obs, events...)

	s.runTurn(st, companion.Turn{SessionID: sessionID, Token: st.token, Text: text}, nil, obs)
	return s.snapshot(st), nil
}

// SendAudio submits a recorded clip as the user turn. It is accepted while
// idle or recording; an active recording is discarded.
func (s *Service) SendAudio(_ context.Context, sessionID string, in companion.AudioInput, obs Observer) (chat.Session, error) {
	st, err := s.lookup(sessionID)
	if err != nil {
		return chat.Session{}, err
	}
	if len(in.Data) == 0 {
		return chat.Session{}, ErrBlankInput
	}

	st.mu.Lock()
	if st.session.Status != chat.StatusIdle && st.session.Status != chat.StatusRecording {
		st.mu.Unlock()
		return chat.Session{}, ErrSessionBusy
	}
	st.recorder.Cancel()
	st.recording = ""
	pending, events := s.beginAudioTurnLocked(st, &in)
	st.mu.Unlock()
	notify(obs, events...)

	s.runAudioTurn(st, in, pending, obs)
	return s.snapshot(st), nil
}

// StartRecording begins capturing a voice note.
func (s *Service) StartRecording(sessionID, mimeType string, obs Observer) error {
	st, err := s.lookup(sessionID)
	if err != nil {
		return err
	}

	st.mu.Lock()
	if st.session.Status != chat.StatusIdle {
		st.mu.Unlock()
		return ErrSessionBusy
	}
	handle, err := st.recorder.Start(mimeType)
	if err != nil {
		st.mu.Unlock()
		return err
	}
	st.recording = handle
	ev := s.setStatusLocked(st, chat.StatusRecording)
	st.mu.Unlock()

	notify(obs, ev)
	return nil
}

// AppendRecording adds captured bytes to the active recording.
func (s *Service) AppendRecording(sessionID string, chunk []byte) error {
	st, err := s.lookup(sessionID)
	if err != nil {
		return err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.session.Status != chat.StatusRecording {
		return ErrNoRecording
	}
	return st.recorder.Write(st.recording, chunk)
}

// StopRecording ends capture. With submit the recording becomes a user audio
// turn; otherwise it is discarded and the session returns to idle.
func (s *Service) StopRecording(_ context.Context, sessionID string, submit bool, obs Observer) (chat.Session, error) {
	st, err := s.lookup(sessionID)
	if err != nil {
		return chat.Session{}, err
	}

	st.mu.Lock()
	if st.session.Status != chat.StatusRecording {
		st.mu.Unlock()
		return chat.Session{}, ErrNoRecording
	}

	if !submit {
		st.recorder.Cancel()
		st.recording = ""
		ev := s.setStatusLocked(st, chat.StatusIdle)
		st.mu.Unlock()
		notify(obs, ev)
		return s.snapshot(st), nil
	}

	blob, err := st.recorder.Stop(st.recording)
	st.recording = ""
	if err != nil || len(blob.Data) == 0 {
		ev := s.setStatusLocked(st, chat.StatusIdle)
		st.mu.Unlock()
		notify(obs, ev)
		if err != nil {
			return chat.Session{}, err
		}
		return chat.Session{}, ErrBlankInput
	}

	in := companion.AudioInput{Data: blob.Data, Format: blob.MimeType, DurationSeconds: blob.DurationSeconds}
	pending, events := s.beginAudioTurnLocked(st, &in)
	st.mu.Unlock()
	notify(obs, events...)

	s.runAudioTurn(st, in, pending, obs)
	return s.snapshot(st), nil
}

// GetSession retrieves a session snapshot.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	st, err := s.lookup(sessionID)
	if err != nil {
		return chat.Session{}, err
	}
	return s.snapshot(st), nil
}

// LoadTranscript returns a copy of the session messages.
func (s *Service) LoadTranscript(ctx context.Context, sessionID string) ([]chat.Message, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return session.Messages, nil
}

// End discards a session: the in-flight turn is cancelled, the remote context
// closed and its clips released.
func (s *Service) End(_ context.Context, sessionID string) error {
	s.mu.Lock()
	st, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	s.release(st)
	s.logger.Info("session ended", "session", sessionID)
	return nil
}

// Shutdown ends every session.
func (s *Service) Shutdown() error {
	s.mu.Lock()
	states := make([]*sessionState, 0, len(s.sessions))
	for id, st := range s.sessions {
		states = append(states, st)
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	for _, st := range states {
		s.release(st)
	}
	return nil
}

// Play toggles playback of a clip that belongs to the session.
func (s *Service) Play(sessionID, ref string) (audio.PlaybackState, error) {
	st, err := s.lookup(sessionID)
	if err != nil {
		return audio.PlaybackState{}, err
	}

	st.mu.Lock()
	owned := false
	for _, r := range st.clipRefs {
		if r == ref {
			owned = true
			break
		}
	}
	st.mu.Unlock()
	if !owned {
		return st.player.State(), audio.ErrClipNotFound
	}

	return st.player.Play(ref)
}

func (s *Service) Pause(sessionID string) (audio.PlaybackState, error) {
	st, err := s.lookup(sessionID)
	if err != nil {
		return audio.PlaybackState{}, err
	}
	return st.player.Pause(), nil
}

func (s *Service) Playback(sessionID string) (audio.PlaybackState, error) {
	st, err := s.lookup(sessionID)
	if err != nil {
		return audio.PlaybackState{}, err
	}
	return st.player.State(), nil
}

func (s *Service) lookup(sessionID string) (*sessionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return st, nil
}

func (s *Service) release(st *sessionState) {
	st.cancel()

	st.mu.Lock()
	refs := append([]string(nil), st.clipRefs...)
	st.clipRefs = nil
	token := st.token
	st.recorder.Cancel()
	st.mu.Unlock()

	st.player.Stop()
	s.clips.Delete(refs...)
	s.generator.Close(token)
}

func (s *Service) snapshot(st *sessionState) chat.Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.session.Clone()
}

func (s *Service) clipDuration(ref string) (float64, error) {
	clip, err := s.clips.Get(ref)
	if err != nil {
		return 0, err
	}
	return clip.DurationSeconds, nil
}

func notify(obs Observer, events ...chat.Event) {
	if obs == nil {
		return
	}
	for _, ev := range events {
		obs(ev)
	}
}

// beginAudioTurnLocked stores the clip and moves to awaitingResponse. The
// user message is returned unappended when the strategy will transcribe it,
// so the transcript can be attached before it becomes visible.
func (s *Service) beginAudioTurnLocked(st *sessionState, in *companion.AudioInput) (*chat.Message, []chat.Event) {
	if in.DurationSeconds <= 0 {
		in.DurationSeconds = audio.DurationFromSize(len(in.Data))
	}
	if in.Format == "" {
		in.Format = audio.DefaultMimeType
	}

	ref := s.clips.Put(audio.Clip{Data: in.Data, MimeType: in.Format, DurationSeconds: in.DurationSeconds})
	st.clipRefs = append(st.clipRefs, ref)

	msg := chat.Message{
		Author:          chat.AuthorUser,
		Kind:            chat.KindAudio,
		AudioRef:        ref,
		DurationSeconds: in.DurationSeconds,
	}

	var events []chat.Event
	var pending *chat.Message
	if s.generator.Mode() == companion.ModeRemoteTextSpeech {
		pending = &msg
	} else {
		appended := s.appendLocked(st, msg)
		events = append(events, messageEvent(st, appended))
	}
	events = append(events, s.setStatusLocked(st, chat.StatusAwaitingResponse))
	return pending, events
}

func (s *Service) runAudioTurn(st *sessionState, in companion.AudioInput, pending *chat.Message, obs Observer) {
	s.runTurn(st, companion.Turn{
		SessionID: st.session.ID,
		Token:     st.token,
		Audio:     &in,
	}, pending, obs)
}

func (s *Service) appendLocked(st *sessionState, msg chat.Message) chat.Message {
	st.nextID++
	msg.ID = st.nextID
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = s.now().UTC()
	}
	st.session.Messages = append(st.session.Messages, msg)
	return msg
}

func (s *Service) setStatusLocked(st *sessionState, status chat.Status) chat.Event {
	st.session.Status = status
	return s.statusEvent(st, status)
}

func (s *Service) statusEvent(st *sessionState, status chat.Status) chat.Event {
	return chat.Event{Type: chat.EventStatus, SessionID: st.session.ID, Status: status}
}

func messageEvent(st *sessionState, msg chat.Message) chat.Event {
	return chat.Event{Type: chat.EventMessage, SessionID: st.session.ID, Message: &msg}
}

func updateEvent(st *sessionState, msg chat.Message) chat.Event {
	return chat.Event{Type: chat.EventUpdate, SessionID: st.session.ID, Message: &msg}
}

// turnState tracks the companion message being built during one turn.
type turnState struct {
	pendingUser *chat.Message
	replyIdx    int
	failed      bool
}

func (t *turnState) hasReply() bool { return t.replyIdx >= 0 }

// runTurn drains the generator stream into the session log and always leaves
// the session idle unless it was ended meanwhile.
func (s *Service) runTurn(st *sessionState, turn companion.Turn, pendingUser *chat.Message, obs Observer) {
	ts := &turnState{pendingUser: pendingUser, replyIdx: -1}

	sr := s.generator.Generate(st.ctx, turn)
	defer sr.Close()

	for {
		ev, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.logger.Warn("generator stream error", "session", turn.SessionID, "error", err)
			ev = companion.Event{Kind: companion.EventFallback, Text: companion.FallbackText}
		}

		st.mu.Lock()
		events := s.applyLocked(st, ts, ev)
		st.mu.Unlock()
		notify(obs, events...)
	}

	if st.ctx.Err() != nil {
		return
	}

	st.mu.Lock()
	var events []chat.Event
	events = append(events, s.flushUserLocked(st, ts)...)
	if !ts.hasReply() && !ts.failed {
		// 没有任何输出按失败处理
		events = append(events, s.applyLocked(st, ts, companion.Event{Kind: companion.EventFallback, Text: companion.FallbackText})...)
	}
	if ts.hasReply() {
		reply := &st.session.Messages[ts.replyIdx]
		if reply.Streaming {
			reply.Streaming = false
			events = append(events, updateEvent(st, *reply))
		}
	}
	events = append(events, s.setStatusLocked(st, chat.StatusIdle))
	st.mu.Unlock()

	notify(obs, events...)
}

func (s *Service) flushUserLocked(st *sessionState, ts *turnState) []chat.Event {
	if ts.pendingUser == nil {
		return nil
	}
	msg := s.appendLocked(st, *ts.pendingUser)
	ts.pendingUser = nil
	return []chat.Event{messageEvent(st, msg)}
}

func (s *Service) applyLocked(st *sessionState, ts *turnState, ev companion.Event) []chat.Event {
	if ev.Kind == companion.EventTranscript {
		if ts.pendingUser != nil {
			ts.pendingUser.Text = ev.Text
		}
		return nil
	}

	events := s.flushUserLocked(st, ts)

	switch ev.Kind {
	case companion.EventDelta:
		if ev.Text == "" {
			return events
		}
		if !ts.hasReply() {
			msg := s.appendLocked(st, chat.Message{
				Author:    chat.AuthorCompanion,
				Kind:      chat.KindText,
				Text:      ev.Text,
				Streaming: true,
			})
			ts.replyIdx = len(st.session.Messages) - 1
			return append(events, messageEvent(st, msg))
		}
		reply := &st.session.Messages[ts.replyIdx]
		reply.Text += ev.Text
		return append(events, chat.Event{
			Type:      chat.EventDelta,
			SessionID: st.session.ID,
			Message:   ptr(*reply),
			Delta:     ev.Text,
		})

	case companion.EventFallback:
		ts.failed = true
		events = append(events, s.setStatusLocked(st, chat.StatusFailed))
		if !ts.hasReply() {
			msg := s.appendLocked(st, chat.Message{
				Author: chat.AuthorCompanion,
				Kind:   chat.KindText,
				Text:   companion.FallbackText,
			})
			ts.replyIdx = len(st.session.Messages) - 1
			return append(events, messageEvent(st, msg))
		}
		reply := &st.session.Messages[ts.replyIdx]
		reply.Text = companion.FallbackText
		reply.Streaming = false
		return append(events, updateEvent(st, *reply))

	case companion.EventAudio:
		if ev.Clip == nil {
			return events
		}
		ref := s.clips.Put(*ev.Clip)
		st.clipRefs = append(st.clipRefs, ref)

		if !ts.hasReply() {
			msg := s.appendLocked(st, chat.Message{
				Author:          chat.AuthorCompanion,
				Kind:            chat.KindAudio,
				AudioRef:        ref,
				DurationSeconds: ev.Clip.DurationSeconds,
			})
			ts.replyIdx = len(st.session.Messages) - 1
			return append(events, messageEvent(st, msg))
		}
		reply := &st.session.Messages[ts.replyIdx]
		reply.Kind = chat.KindAudio
		reply.AudioRef = ref
		reply.DurationSeconds = ev.Clip.DurationSeconds
		return append(events, updateEvent(st, *reply))
	}

	return events
}

func ptr[T any](v T) *T { return &v }
