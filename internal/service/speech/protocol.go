package speech

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/samber/oops"
)

// 火山引擎语音 WebSocket 二进制帧：4 字节头 + 可选序号/事件 + 4 字节长度 + payload。
const protocolVersion = 0b0001

// MessageType 消息类型
type MessageType uint8

const (
	FullClientRequest       MessageType = 0b0001
	AudioOnlyRequest        MessageType = 0b0010
	FullServerResponse      MessageType = 0b1001
	AudioOnlyServerResponse MessageType = 0b1011
	ErrorMessage            MessageType = 0b1111
)

// MessageFlags 消息特定标志，低两位描述序号，第三位表示携带事件。
type MessageFlags uint8

const (
	NoSequenceNumber       MessageFlags = 0b0000
	PositiveSequenceNumber MessageFlags = 0b0001
	LastPacketNoSequence   MessageFlags = 0b0010
	NegativeSequenceNumber MessageFlags = 0b0011
	WithEvent              MessageFlags = 0b0100

	sequenceMask MessageFlags = 0b0011
)

// EventType 服务端事件
type EventType int32

const (
	EventTypeNone               EventType = 0
	EventTypeStartConnection    EventType = 1
	EventTypeFinishConnection   EventType = 2
	EventTypeConnectionStarted  EventType = 50
	EventTypeConnectionFailed   EventType = 51
	EventTypeConnectionFinished EventType = 52
	EventTypeSessionStarted     EventType = 150
	EventTypeSessionFinished    EventType = 152
	EventTypeSessionFailed      EventType = 153
)

type SerializationMethod uint8

const (
	NoSerialization   SerializationMethod = 0b0000
	JSONSerialization SerializationMethod = 0b0001
)

type CompressionMethod uint8

const (
	NoCompression   CompressionMethod = 0b0000
	GzipCompression CompressionMethod = 0b0001
)

// Header is the fixed 4-byte frame header. Size counts 4-byte words.
type Header struct {
	Version       uint8
	Size          uint8
	Type          MessageType
	Flags         MessageFlags
	Serialization SerializationMethod
	Compression   CompressionMethod
}

// Frame is one decoded protocol message.
type Frame struct {
	Header    Header
	Sequence  int32
	Event     EventType
	SessionID string
	ConnectID string
	ErrorCode uint32
	Payload   []byte
}

func newHeader(t MessageType, flags MessageFlags, ser SerializationMethod, comp CompressionMethod) Header {
	return Header{Version: protocolVersion, Size: 1, Type: t, Flags: flags, Serialization: ser, Compression: comp}
}

func (h Header) bytes() [4]byte {
	return [4]byte{
		h.Version<<4 | h.Size,
		uint8(h.Type)<<4 | uint8(h.Flags),
		uint8(h.Serialization)<<4 | uint8(h.Compression),
		0,
	}
}

func parseHeader(b [4]byte) (Header, error) {
	h := Header{
		Version:       b[0] >> 4,
		Size:          b[0] & 0x0F,
		Type:          MessageType(b[1] >> 4),
		Flags:         MessageFlags(b[1] & 0x0F),
		Serialization: SerializationMethod(b[2] >> 4),
		Compression:   CompressionMethod(b[2] & 0x0F),
	}
	if h.Version != protocolVersion {
		return Header{}, oops.In("speech").Errorf("unsupported protocol version: %d", h.Version)
	}
	return h, nil
}

func (f *Frame) hasSequence() bool {
	switch f.Header.Flags & sequenceMask {
	case PositiveSequenceNumber, NegativeSequenceNumber:
		return true
	}
	return false
}

func (f *Frame) hasEvent() bool {
	return f.Header.Flags&WithEvent != 0
}

// IsLast 判断是否为最后一包
func (f *Frame) IsLast() bool {
	switch f.Header.Flags & sequenceMask {
	case LastPacketNoSequence, NegativeSequenceNumber:
		return true
	}
	return false
}

func (f *Frame) IsError() bool {
	return f.Header.Type == ErrorMessage
}

// Marshal encodes the frame.
func (f *Frame) Marshal() []byte {
	var buf bytes.Buffer
	h := f.Header.bytes()
	buf.Write(h[:])

	if f.hasSequence() {
		writeUint32(&buf, uint32(f.Sequence))
	}
	if f.hasEvent() {
		writeUint32(&buf, uint32(f.Event))
		if !connectionEvent(f.Event) {
			writeString(&buf, f.SessionID)
		}
		if carriesConnectID(f.Event) {
			writeString(&buf, f.ConnectID)
		}
	}
	if f.IsError() {
		writeUint32(&buf, f.ErrorCode)
	}

	writeUint32(&buf, uint32(len(f.Payload)))
	buf.Write(f.Payload)
	return buf.Bytes()
}

// ReadFrame decodes one frame from r.
func ReadFrame(r io.Reader) (*Frame, error) {
	var raw [4]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return nil, oops.In("speech").Wrapf(err, "failed to read header")
	}

	header, err := parseHeader(raw)
	if err != nil {
		return nil, err
	}
	f := &Frame{Header: header}

	if extra := int(header.Size)*4 - 4; extra > 0 {
		if _, err := io.CopyN(io.Discard, r, int64(extra)); err != nil {
			return nil, oops.In("speech").Wrapf(err, "failed to read extended header")
		}
	}

	if f.hasSequence() {
		seq, err := readUint32(r)
		if err != nil {
			return nil, oops.In("speech").Wrapf(err, "failed to read sequence")
		}
		f.Sequence = int32(seq)
	}

	if f.hasEvent() {
		event, err := readUint32(r)
		if err != nil {
			return nil, oops.In("speech").Wrapf(err, "failed to read event type")
		}
		f.Event = EventType(int32(event))

		if !connectionEvent(f.Event) {
			if f.SessionID, err = readString(r); err != nil {
				return nil, oops.In("speech").Wrapf(err, "failed to read session id")
			}
		}
		if carriesConnectID(f.Event) {
			if f.ConnectID, err = readString(r); err != nil {
				return nil, oops.In("speech").Wrapf(err, "failed to read connect id")
			}
		}
	}

	if f.IsError() {
		if f.ErrorCode, err = readUint32(r); err != nil {
			return nil, oops.In("speech").Wrapf(err, "failed to read error code")
		}
	}

	size, err := readUint32(r)
	if err != nil {
		return nil, oops.In("speech").Wrapf(err, "failed to read payload size")
	}
	if size > 0 {
		f.Payload = make([]byte, size)
		if _, err := io.ReadFull(r, f.Payload); err != nil {
			return nil, oops.In("speech").With("expected", size).Wrapf(err, "failed to read payload")
		}
	}

	return f, nil
}

// ParseFrame decodes a websocket binary message.
func ParseFrame(data []byte) (*Frame, error) {
	return ReadFrame(bytes.NewReader(data))
}

// NewFullClientRequest 携带 JSON 请求参数的首包。
func NewFullClientRequest(payload []byte, compression CompressionMethod) *Frame {
	return &Frame{
		Header:  newHeader(FullClientRequest, NoSequenceNumber, JSONSerialization, compression),
		Payload: payload,
	}
}

// NewAudioRequest 音频包；最后一包使用负序号。
func NewAudioRequest(audio []byte, sequence int32, last bool, compression CompressionMethod) *Frame {
	flags := NoSequenceNumber
	switch {
	case last && sequence != 0:
		flags = NegativeSequenceNumber
		sequence = -sequence
	case last:
		flags = LastPacketNoSequence
	case sequence > 0:
		flags = PositiveSequenceNumber
	}

	return &Frame{
		Header:   newHeader(AudioOnlyRequest, flags, NoSerialization, compression),
		Sequence: sequence,
		Payload:  audio,
	}
}

func connectionEvent(event EventType) bool {
	switch event {
	case EventTypeStartConnection, EventTypeFinishConnection,
		EventTypeConnectionStarted, EventTypeConnectionFailed, EventTypeConnectionFinished:
		return true
	}
	return false
}

func carriesConnectID(event EventType) bool {
	switch event {
	case EventTypeConnectionStarted, EventTypeConnectionFailed, EventTypeConnectionFinished:
		return true
	}
	return false
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeString(buf *bytes.Buffer, s string) {
	writeUint32(buf, uint32(len(s)))
	buf.WriteString(s)
}

func readUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func readString(r io.Reader) (string, error) {
	n, err := readUint32(r)
	if err != nil || n == 0 {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}
