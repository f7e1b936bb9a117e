package codec

import (
	"fmt"
	"github.com/klauspost/compress/zstd"
)

// Zstd compresses the output of another codec.
// EncodeAll and DecodeAll are safe for concurrent use, so one instance may serve many shards.
type Zstd struct {
	inner Codec
	enc   *zstd.Encoder
	dec   *zstd.Decoder
}

func newZstd(inner Codec, level int) (*Zstd, error) {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.EncoderLevel(level)),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, fmt.Errorf("init zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("init zstd decoder: %w", err)
	}
	return &Zstd{inner: inner, enc: enc, dec: dec}, nil
}

func (z *Zstd) Marshal(v any) ([]byte, error) {
	raw, err := z.inner.Marshal(v)
	if err != nil {
		return nil, err
	}
	return z.enc.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

func (z *Zstd) Unmarshal(data []byte, shape Shape) (any, error) {
	raw, err := z.dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	return z.inner.Unmarshal(raw, shape)
}

// RoundTrip skips compression: the copy never leaves memory.
func (z *Zstd) RoundTrip(v any) (any, error) {
	return z.inner.RoundTrip(v)
}
