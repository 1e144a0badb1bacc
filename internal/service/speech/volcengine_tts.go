package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/samber/oops"

	"github.com/zhouzirui/sakhi/backend/internal/logging"
	"github.com/zhouzirui/sakhi/backend/internal/model/speech"
)

const ttsStreamURL = "wss://openspeech.bytedance.com/api/v3/tts/unidirectional/stream"

// DefaultEnglishVoice backs the "sakhi" voice alias.
const DefaultEnglishVoice = "en_female_amy_jupiter_bigtts"

// VolcengineTTSClient 火山引擎TTS WebSocket客户端
type VolcengineTTSClient struct {
	config *speech.SpeechConfig
	dialer *websocket.Dialer
	url    string
	logger *slog.Logger
}

type ttsServerMessage struct {
	ReqID    string `json:"reqid"`
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Sequence int    `json:"sequence"`
	Data     string `json:"data"`
	Addition struct {
		Duration string `json:"duration,omitempty"`
	} `json:"addition,omitempty"`
}

type ttsClientRequest struct {
	User struct {
		UID string `json:"uid"`
	} `json:"user"`
	ReqParams struct {
		Speaker     string         `json:"speaker"`
		Text        string         `json:"text"`
		AudioParams ttsAudioParams `json:"audio_params"`
		Additions   string         `json:"additions,omitempty"`
		Language    string         `json:"language,omitempty"`
	} `json:"req_params"`
}

type ttsAudioParams struct {
	Format          string  `json:"format"`
	SampleRate      int     `json:"sample_rate"`
	EnableTimestamp bool    `json:"enable_timestamp"`
	SpeedRatio      float32 `json:"speed_ratio,omitempty"`
	VolumeRatio     float32 `json:"volume_ratio,omitempty"`
}

// NewVolcengineTTSClient 创建火山引擎TTS客户端
func NewVolcengineTTSClient(config *speech.SpeechConfig) *VolcengineTTSClient {
	return &VolcengineTTSClient{
		config: config,
		dialer: &websocket.Dialer{HandshakeTimeout: 30 * time.Second},
		url:    ttsStreamURL,
		logger: logging.Component("tts"),
	}
}

// Synthesize tries each speaker candidate against each compatible resource id
// until one is accepted. Only resource/speaker mismatches move on to the next
// candidate; other errors are returned immediately.
func (c *VolcengineTTSClient) Synthesize(ctx context.Context, req *speech.TTSRequest) (*speech.TTSResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, oops.In("tts").Errorf("TTS text is empty")
	}

	appKey, accessKey, err := resolveCredentials(c.config)
	if err != nil {
		return nil, err
	}

	encoding := strings.TrimSpace(req.Format)
	if encoding == "" || encoding == "wav" {
		encoding = "mp3"
	}

	speakers := resolveTTSSpeakerCandidates(req.Voice, c.config.TTSVoice)
	var lastMismatch error

	for _, speaker := range speakers {
		for idx, resourceID := range resolveTTSResourceCandidates(speaker) {
			resp, err := c.synthesizeWithResource(ctx, req, appKey, accessKey, speaker, encoding, resourceID)
			if err == nil {
				if idx > 0 {
					c.logger.Info("fallback resource accepted", "voice", speaker, "resource", resourceID)
				}
				return resp, nil
			}
			if !isResourceMismatchError(err) {
				return nil, err
			}
			c.logger.Warn("resource mismatch", "voice", speaker, "resource", resourceID, "error", err)
			lastMismatch = err
		}
	}

	if lastMismatch != nil {
		return nil, lastMismatch
	}
	return nil, oops.In("tts").With("voices", speakers).Errorf("TTS synthesis failed: no compatible resource id or speaker")
}

func (c *VolcengineTTSClient) synthesizeWithResource(
	ctx context.Context,
	req *speech.TTSRequest,
	appKey, accessKey, speaker, encoding, resourceID string,
) (*speech.TTSResponse, error) {
	connectID := uuid.NewString()

	header := http.Header{}
	header.Set("X-Api-App-Key", appKey)
	header.Set("X-Api-Access-Key", accessKey)
	header.Set("X-Api-Resource-Id", resourceID)
	header.Set("X-Api-Connect-Id", connectID)

	conn, resp, err := c.dialer.DialContext(ctx, c.url, header)
	if err != nil {
		return nil, oops.In("tts").With("resource", resourceID).Wrapf(err, "failed to connect to TTS websocket")
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if resp != nil {
		if logid := resp.Header.Get("X-Tt-Logid"); logid != "" {
			c.logger.Debug("connected", "logid", logid)
		}
	}

	ttsReq, uid := c.buildRequest(req, speaker, encoding)
	payload, err := json.Marshal(ttsReq)
	if err != nil {
		return nil, oops.In("tts").Wrapf(err, "failed to marshal TTS request")
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, NewFullClientRequest(payload, NoCompression).Marshal()); err != nil {
		return nil, oops.In("tts").Wrapf(err, "failed to send TTS request")
	}

	var (
		audio    bytes.Buffer
		reqID    string
		duration int64
	)

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uid
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, oops.In("tts").Wrapf(err, "failed to read TTS response")
		}

		frame, err := ParseFrame(data)
		if err != nil {
			return nil, err
		}

		switch frame.Header.Type {
		case ErrorMessage:
			msg, _ := DecompressPayload(frame.Payload, frame.Header.Compression)
			return nil, oops.In("tts").With("code", frame.ErrorCode).Errorf("TTS error: %s", string(msg))

		case AudioOnlyServerResponse:
			chunk, err := DecompressPayload(frame.Payload, frame.Header.Compression)
			if err != nil {
				return nil, err
			}
			audio.Write(chunk)

		case FullServerResponse:
			body, err := DecompressPayload(frame.Payload, frame.Header.Compression)
			if err != nil {
				return nil, err
			}

			var msg ttsServerMessage
			if len(body) > 0 {
				if err := json.Unmarshal(body, &msg); err != nil {
					c.logger.Warn("failed to unmarshal response payload", "error", err)
				} else {
					if msg.Code != 0 && msg.Code != 3000 {
						return nil, oops.In("tts").With("code", msg.Code).Errorf("TTS API error %d: %s", msg.Code, msg.Message)
					}
					if msg.ReqID != "" {
						reqID = msg.ReqID
					}
					if msg.Addition.Duration != "" {
						if parsed, err := strconv.ParseInt(msg.Addition.Duration, 10, 64); err == nil {
							duration = parsed
						}
					}
					if msg.Data != "" {
						chunk, err := base64.StdEncoding.DecodeString(msg.Data)
						if err != nil {
							return nil, oops.In("tts").Wrapf(err, "failed to decode base64 audio chunk")
						}
						audio.Write(chunk)
					}
				}
			}

			finished := frame.hasEvent() && frame.Event == EventTypeSessionFinished
			if finished || frame.IsLast() || msg.Sequence < 0 {
				if audio.Len() == 0 {
					return nil, oops.In("tts").Errorf("TTS audio is empty")
				}
				if reqID == "" {
					reqID = connectID
				}
				return &speech.TTSResponse{
					SessionID: sessionID,
					AudioData: audio.Bytes(),
					Duration:  duration,
					Format:    encoding,
					RequestID: reqID,
					CreatedAt: time.Now(),
				}, nil
			}

		default:
			c.logger.Debug("unexpected message type", "type", frame.Header.Type)
		}
	}
}

func (c *VolcengineTTSClient) buildRequest(req *speech.TTSRequest, speaker, encoding string) (*ttsClientRequest, string) {
	r := &ttsClientRequest{}

	uid := strings.TrimSpace(req.SessionID)
	if uid == "" {
		uid = uuid.NewString()
	}
	r.User.UID = uid

	r.ReqParams.Speaker = speaker
	r.ReqParams.Text = req.Text
	r.ReqParams.AudioParams = ttsAudioParams{
		Format:          encoding,
		SampleRate:      24000,
		EnableTimestamp: true,
	}

	speed := req.Speed
	if speed <= 0 {
		speed = c.config.TTSSpeed
	}
	if speed > 0 && speed != 1.0 {
		r.ReqParams.AudioParams.SpeedRatio = speed
	}
	if volume := c.config.TTSVolume; volume > 0 && volume != 1.0 {
		r.ReqParams.AudioParams.VolumeRatio = volume
	}

	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = strings.TrimSpace(c.config.TTSLanguage)
	}
	r.ReqParams.Language = language
	r.ReqParams.Additions = `{"disable_markdown_filter":false}`

	return r, uid
}

func resolveTTSResourceCandidates(voice string) []string {
	const (
		defaultResource = "volc.service_type.10029"
		megaResource    = "volc.megatts.default"
		seedResource    = "seed-tts-2.0"
	)

	voice = strings.TrimSpace(voice)
	if strings.HasPrefix(voice, "S_") {
		return []string{megaResource}
	}

	normalized := strings.ToLower(voice)
	for _, hint := range []string{"bigtts", "seed", "megatts", "uranus", "venus", "jupiter", "saturn", "neptune", "mercury", "pluto", "mars"} {
		if strings.Contains(normalized, hint) {
			return []string{seedResource, defaultResource}
		}
	}
	return []string{defaultResource, seedResource}
}

var ttsVoiceAliases = map[string]string{
	"sakhi":      DefaultEnglishVoice,
	"en_default": DefaultEnglishVoice,
	"calm":       "en_female_skye_emo_v2_mars_bigtts",
}

// resolveTTSSpeakerCandidates 返回去重后的候选音色：请求值优先，其次是配置默认值。
func resolveTTSSpeakerCandidates(requested, fallback string) []string {
	var candidates []string

	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		if mapped, ok := ttsVoiceAliases[strings.ToLower(s)]; ok {
			s = mapped
		}
		for _, existing := range candidates {
			if strings.EqualFold(existing, s) {
				return
			}
		}
		candidates = append(candidates, s)
	}

	add(requested)
	add(fallback)
	if len(candidates) == 0 {
		candidates = append(candidates, DefaultEnglishVoice)
	}
	return candidates
}

func isResourceMismatchError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "resource ID is mismatched with speaker related resource")
}
