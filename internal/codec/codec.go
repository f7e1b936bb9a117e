// Package codec serializes cached values. Values are encoded as JSON and decoded back into
// the Go types they had when they were stored, including the dynamic types behind interfaces,
// so a round trip preserves structs, typed maps and integers inside untyped documents.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"github.com/Borislavv/go-ctx-cache/config"
)

type Codec interface {
	Marshal(v any) ([]byte, error)
	// Unmarshal decodes data into a new value of the given shape. A zero Shape means the stored value was nil.
	Unmarshal(data []byte, shape Shape) (any, error)
	// RoundTrip returns a copy of v obtained by encoding and decoding it.
	RoundTrip(v any) (any, error)
}

// New returns the codec matching the options: plain JSON, or JSON wrapped by zstd when compression is on.
func New(opts config.Options) (Codec, error) {
	if opts.IsCompressed() {
		return newZstd(JSON{}, opts.CompressionLevel)
	}
	return JSON{}, nil
}

type JSON struct{}

func (JSON) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", v, err)
	}
	return data, nil
}

func (JSON) Unmarshal(data []byte, shape Shape) (any, error) {
	return unmarshal(data, shape)
}

func (j JSON) RoundTrip(v any) (any, error) {
	data, err := j.Marshal(v)
	if err != nil {
		return nil, err
	}
	return j.Unmarshal(data, ShapeOf(v))
}

func decode(data []byte, target any, useNumber bool) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if useNumber {
		dec.UseNumber()
	}
	return dec.Decode(target)
}
