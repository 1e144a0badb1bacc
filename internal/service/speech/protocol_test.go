package speech

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullClientRequestRoundTrip(t *testing.T) {
	payload, err := CompressPayload([]byte(`{"hello":"world"}`), GzipCompression)
	require.NoError(t, err)

	data := NewFullClientRequest(payload, GzipCompression).Marshal()
	assert.Equal(t, []byte{0x11, 0x10, 0x11, 0x00}, data[:4])

	frame, err := ParseFrame(data)
	require.NoError(t, err)
	assert.Equal(t, FullClientRequest, frame.Header.Type)
	assert.False(t, frame.IsLast())

	plain, err := DecompressPayload(frame.Payload, frame.Header.Compression)
	require.NoError(t, err)
	assert.JSONEq(t, `{"hello":"world"}`, string(plain))
}

func TestAudioRequestSequenceFlags(t *testing.T) {
	cases := []struct {
		name     string
		sequence int32
		last     bool
		flags    MessageFlags
		decoded  int32
	}{
		{"middle packet", 3, false, PositiveSequenceNumber, 3},
		{"last packet negates", 4, true, NegativeSequenceNumber, -4},
		{"last without sequence", 0, true, LastPacketNoSequence, 0},
		{"no sequence", 0, false, NoSequenceNumber, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			frame, err := ParseFrame(NewAudioRequest([]byte{1, 2, 3}, tc.sequence, tc.last, NoCompression).Marshal())
			require.NoError(t, err)
			assert.Equal(t, tc.flags, frame.Header.Flags)
			assert.Equal(t, tc.decoded, frame.Sequence)
			assert.Equal(t, tc.last, frame.IsLast())
			assert.Equal(t, []byte{1, 2, 3}, frame.Payload)
		})
	}
}

func TestEventFrames(t *testing.T) {
	session := &Frame{
		Header:    newHeader(FullServerResponse, WithEvent, JSONSerialization, NoCompression),
		Event:     EventTypeSessionFinished,
		SessionID: "session-1",
		Payload:   []byte(`{}`),
	}
	decoded, err := ParseFrame(session.Marshal())
	require.NoError(t, err)
	assert.Equal(t, EventTypeSessionFinished, decoded.Event)
	assert.Equal(t, "session-1", decoded.SessionID)
	assert.Empty(t, decoded.ConnectID)

	conn := &Frame{
		Header:    newHeader(FullServerResponse, WithEvent, JSONSerialization, NoCompression),
		Event:     EventTypeConnectionStarted,
		ConnectID: "conn-9",
	}
	decoded, err = ParseFrame(conn.Marshal())
	require.NoError(t, err)
	assert.Equal(t, "conn-9", decoded.ConnectID)
	assert.Empty(t, decoded.SessionID)
	assert.Empty(t, decoded.Payload)
}

func TestErrorFrame(t *testing.T) {
	frame := &Frame{
		Header:    newHeader(ErrorMessage, NoSequenceNumber, JSONSerialization, NoCompression),
		ErrorCode: 45000001,
		Payload:   []byte("bad request"),
	}

	decoded, err := ParseFrame(frame.Marshal())
	require.NoError(t, err)
	assert.True(t, decoded.IsError())
	assert.Equal(t, uint32(45000001), decoded.ErrorCode)
	assert.Equal(t, "bad request", string(decoded.Payload))
}

func TestParseFrameErrors(t *testing.T) {
	_, err := ParseFrame([]byte{0x11})
	assert.Error(t, err)

	// 版本号错误
	_, err = ParseFrame([]byte{0x21, 0x10, 0x10, 0x00, 0, 0, 0, 0})
	assert.Error(t, err)

	// 声明的 payload 长度超过实际数据
	_, err = ParseFrame([]byte{0x11, 0x10, 0x10, 0x00, 0, 0, 0, 9, 'x'})
	assert.Error(t, err)
}

func TestCompressionUnsupported(t *testing.T) {
	_, err := CompressPayload([]byte("x"), CompressionMethod(0b1111))
	assert.Error(t, err)
	_, err = DecompressPayload([]byte("x"), CompressionMethod(0b1111))
	assert.Error(t, err)
}
