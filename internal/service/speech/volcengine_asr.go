package speech

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/samber/oops"
	"golang.org/x/sync/errgroup"

	"github.com/zhouzirui/sakhi/backend/internal/logging"
	"github.com/zhouzirui/sakhi/backend/internal/model/speech"
)

const (
	asrNoStreamURL = "wss://openspeech.bytedance.com/api/v3/sauc/bigmodel_nostream"

	// 16kHz 16bit 单声道，每包约 200ms
	asrChunkSize     = 6400
	asrChunkInterval = 200 * time.Millisecond
)

// VolcengineASRClient 火山引擎ASR WebSocket客户端
type VolcengineASRClient struct {
	config        *speech.SpeechConfig
	dialer        *websocket.Dialer
	url           string
	chunkInterval time.Duration
	logger        *slog.Logger
}

type asrUtterance struct {
	Text      string `json:"text"`
	StartTime int64  `json:"start_time"`
	EndTime   int64  `json:"end_time"`
	Definite  bool   `json:"definite"`
}

type asrServerMessage struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Sequence int    `json:"sequence"`
	Result   struct {
		Text       string         `json:"text"`
		Utterances []asrUtterance `json:"utterances,omitempty"`
	} `json:"result,omitempty"`
	AudioInfo struct {
		Duration int64 `json:"duration"`
	} `json:"audio_info,omitempty"`
}

// asrClientRequest 首包参数
type asrClientRequest struct {
	User struct {
		UID string `json:"uid,omitempty"`
	} `json:"user,omitempty"`
	Audio struct {
		Language string `json:"language,omitempty"`
		Format   string `json:"format"`
		Codec    string `json:"codec,omitempty"`
		Rate     int    `json:"rate,omitempty"`
		Bits     int    `json:"bits,omitempty"`
		Channel  int    `json:"channel,omitempty"`
	} `json:"audio"`
	Request struct {
		ModelName      string `json:"model_name"`
		EnableITN      bool   `json:"enable_itn,omitempty"`
		EnablePunc     bool   `json:"enable_punc,omitempty"`
		ShowUtterances bool   `json:"show_utterances,omitempty"`
		ResultType     string `json:"result_type,omitempty"`
		EndWindowSize  int    `json:"end_window_size,omitempty"`
	} `json:"request"`
}

// NewVolcengineASRClient 创建火山引擎ASR客户端
func NewVolcengineASRClient(config *speech.SpeechConfig) *VolcengineASRClient {
	return &VolcengineASRClient{
		config:        config,
		dialer:        &websocket.Dialer{HandshakeTimeout: 30 * time.Second},
		url:           asrNoStreamURL,
		chunkInterval: asrChunkInterval,
		logger:        logging.Component("asr"),
	}
}

// Transcribe 建立连接、发送音频并等待最终识别结果。发送与接收并发进行，
// 服务端提前报错时会取消发送。
func (c *VolcengineASRClient) Transcribe(ctx context.Context, req *speech.ASRRequest) (*speech.ASRResponse, error) {
	if len(req.AudioData) == 0 {
		return nil, oops.In("asr").Errorf("no audio data to send")
	}

	appID, token, err := resolveCredentials(c.config)
	if err != nil {
		return nil, err
	}

	resourceID := "volc.bigasr.sauc.duration"
	if c.config.ConcurrentMode {
		resourceID = "volc.bigasr.sauc.concurrent"
	}

	header := http.Header{}
	header.Set("X-Api-App-Key", appID)
	header.Set("X-Api-Access-Key", token)
	header.Set("X-Api-Resource-Id", resourceID)
	header.Set("X-Api-Connect-Id", req.SessionID)

	conn, resp, err := c.dialer.DialContext(ctx, c.url, header)
	if err != nil {
		return nil, oops.In("asr").With("resource", resourceID).Wrapf(err, "failed to connect to ASR websocket")
	}
	defer conn.Close()

	if resp != nil {
		if logid := resp.Header.Get("X-Tt-Logid"); logid != "" {
			c.logger.Debug("connected", "logid", logid, "session", req.SessionID)
		}
	}

	payload, err := json.Marshal(c.buildRequest(req))
	if err != nil {
		return nil, oops.In("asr").Wrapf(err, "failed to marshal ASR request")
	}
	compressed, err := CompressPayload(payload, GzipCompression)
	if err != nil {
		return nil, err
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, NewFullClientRequest(compressed, GzipCompression).Marshal()); err != nil {
		return nil, oops.In("asr").Wrapf(err, "failed to send ASR request")
	}

	g, gctx := errgroup.WithContext(ctx)

	// 连接在 ctx 取消时关闭，以解除阻塞的读
	stop := context.AfterFunc(gctx, func() { _ = conn.Close() })
	defer stop()

	sendCtx, cancelSend := context.WithCancel(gctx)
	defer cancelSend()

	g.Go(func() error {
		err := c.sendAudio(sendCtx, conn, req.AudioData)
		if err != nil && sendCtx.Err() != nil && gctx.Err() == nil {
			// 结果已返回，剩余音频无需发送
			return nil
		}
		return err
	})

	var result *speech.ASRResponse
	g.Go(func() error {
		var err error
		result, err = c.receive(conn, req.SessionID)
		if err == nil {
			cancelSend()
		}
		return err
	})

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return result, nil
}

func (c *VolcengineASRClient) buildRequest(req *speech.ASRRequest) *asrClientRequest {
	r := &asrClientRequest{}
	r.User.UID = req.SessionID

	r.Audio.Format = req.Format
	if r.Audio.Format == "" {
		r.Audio.Format = "wav"
	}
	r.Audio.Language = req.Language
	if r.Audio.Language == "" {
		r.Audio.Language = c.config.ASRLanguage
	}
	r.Audio.Codec = "raw"
	r.Audio.Rate = 16000
	r.Audio.Bits = 16
	r.Audio.Channel = 1

	r.Request.ModelName = "bigmodel"
	r.Request.EnableITN = true
	r.Request.EnablePunc = true
	r.Request.ShowUtterances = true
	r.Request.ResultType = "full"
	r.Request.EndWindowSize = 800
	return r
}

// sendAudio 分包发送，序号从 2 开始（首包占用 1）
func (c *VolcengineASRClient) sendAudio(ctx context.Context, conn *websocket.Conn, audio []byte) error {
	sequence := int32(2)
	for start := 0; start < len(audio); start += asrChunkSize {
		end := min(start+asrChunkSize, len(audio))
		last := end == len(audio)

		chunk, err := CompressPayload(audio[start:end], GzipCompression)
		if err != nil {
			return err
		}
		frame := NewAudioRequest(chunk, sequence, last, GzipCompression)
		if err := conn.WriteMessage(websocket.BinaryMessage, frame.Marshal()); err != nil {
			return oops.In("asr").With("sequence", sequence).Wrapf(err, "failed to send audio chunk")
		}
		sequence++

		if last {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.chunkInterval):
		}
	}
	return nil
}

func (c *VolcengineASRClient) receive(conn *websocket.Conn, sessionID string) (*speech.ASRResponse, error) {
	var (
		text     string
		duration int64
	)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return nil, oops.In("asr").Wrapf(err, "failed to read ASR response")
		}

		frame, err := ParseFrame(data)
		if err != nil {
			return nil, err
		}

		switch frame.Header.Type {
		case ErrorMessage:
			payload, _ := DecompressPayload(frame.Payload, frame.Header.Compression)
			return nil, oops.In("asr").With("code", frame.ErrorCode).Errorf("ASR error: %s", string(payload))

		case FullServerResponse:
			payload, err := DecompressPayload(frame.Payload, frame.Header.Compression)
			if err != nil {
				return nil, err
			}

			var msg asrServerMessage
			if err := json.Unmarshal(payload, &msg); err != nil {
				c.logger.Warn("failed to unmarshal response", "error", err)
				continue
			}
			if msg.Code != 0 && msg.Code != 20000000 {
				return nil, oops.In("asr").With("code", msg.Code).Errorf("ASR API error %d: %s", msg.Code, msg.Message)
			}

			candidate := msg.Result.Text
			if candidate == "" {
				candidate = joinUtterances(msg.Result.Utterances)
			}
			if candidate != "" {
				text = candidate
			}
			if msg.AudioInfo.Duration > 0 {
				duration = msg.AudioInfo.Duration
			}

			if frame.IsLast() || msg.Sequence < 0 {
				if text == "" {
					c.logger.Info("empty transcript", "session", sessionID)
				}
				return &speech.ASRResponse{
					SessionID:  sessionID,
					Text:       text,
					Confidence: estimateASRConfidence(text),
					Duration:   duration,
					RequestID:  sessionID,
					CreatedAt:  time.Now(),
				}, nil
			}
		}
	}
}

func joinUtterances(utterances []asrUtterance) string {
	parts := make([]string, 0, len(utterances))
	for _, u := range utterances {
		parts = append(parts, u.Text)
	}
	return strings.Join(parts, " ")
}

func estimateASRConfidence(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	return 0.95
}
