package postgres

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Raw delivery payloads are kept for audit. They are JSON and compress well, so they are
// stored zstd-compressed.
var (
	payloadOnce    sync.Once
	payloadEncoder *zstd.Encoder
	payloadDecoder *zstd.Decoder
	payloadInitErr error
)

func payloadCodec() (*zstd.Encoder, *zstd.Decoder, error) {
	payloadOnce.Do(func() {
		payloadEncoder, payloadInitErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if payloadInitErr != nil {
			return
		}
		payloadDecoder, payloadInitErr = zstd.NewReader(nil)
	})
	return payloadEncoder, payloadDecoder, payloadInitErr
}

// CompressPayload zstd-compresses raw. Empty input stays empty.
func CompressPayload(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	enc, _, err := payloadCodec()
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	return enc.EncodeAll(raw, nil), nil
}

// DecompressPayload reverses CompressPayload.
func DecompressPayload(stored []byte) ([]byte, error) {
	if len(stored) == 0 {
		return nil, nil
	}
	_, dec, err := payloadCodec()
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	raw, err := dec.DecodeAll(stored, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress payload: %w", err)
	}
	return raw, nil
}
