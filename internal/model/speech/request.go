package speech

// ASRRequest 语音识别请求
type ASRRequest struct {
	SessionID string `json:"sessionId"`
	AudioData []byte `json:"-"`
	Format    string `json:"format"`   // mp3, wav, webm, etc.
	Language  string `json:"language"` // en-US, hi-IN, etc.
}

// TTSRequest 语音合成请求
type TTSRequest struct {
	SessionID string  `json:"sessionId" validate:"omitempty"`
	Text      string  `json:"text" validate:"required,max=1024"`
	Voice     string  `json:"voice"`
	Speed     float32 `json:"speed" validate:"omitempty,gte=0.5,lte=2"` // 语速倍率 0.5-2.0
	Format    string  `json:"format"`                                   // mp3, wav, etc.
	Language  string  `json:"language"`
}
