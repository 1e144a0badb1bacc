package speech

import (
	"bytes"
	"compress/gzip"
	"io"

	"github.com/samber/oops"
)

// CompressPayload 按帧头声明的方式压缩 payload。
func CompressPayload(data []byte, method CompressionMethod) ([]byte, error) {
	switch method {
	case NoCompression:
		return data, nil
	case GzipCompression:
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			_ = w.Close()
			return nil, oops.In("speech").Wrapf(err, "gzip write failed")
		}
		if err := w.Close(); err != nil {
			return nil, oops.In("speech").Wrapf(err, "gzip close failed")
		}
		return buf.Bytes(), nil
	default:
		return nil, oops.In("speech").Errorf("unsupported compression method: %d", method)
	}
}

// DecompressPayload 解压缩 payload
func DecompressPayload(data []byte, method CompressionMethod) ([]byte, error) {
	switch method {
	case NoCompression:
		return data, nil
	case GzipCompression:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, oops.In("speech").Wrapf(err, "gzip reader creation failed")
		}
		defer r.Close()

		out, err := io.ReadAll(r)
		if err != nil {
			return nil, oops.In("speech").Wrapf(err, "gzip read failed")
		}
		return out, nil
	default:
		return nil, oops.In("speech").Errorf("unsupported compression method: %d", method)
	}
}
