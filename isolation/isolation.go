// Package isolation protects cached values from callers that mutate what they read.
//
// Each config.IsolationMode maps to an Isolator applied to every value returned by Get:
//
//   - none: the cached reference itself, no allocation.
//   - structural-shadow: a copy-on-write Shadow for objects, shallow copies otherwise.
//     Top-level writes stay on the returned value, nested values remain shared with the cache.
//   - deep-clone: a recursive copy.
//   - serialize-roundtrip: a copy decoded from the serialized form.
package isolation

import "github.com/Borislavv/go-ctx-cache/config"

type Isolator interface {
	Isolate(v any) (any, error)
}

// Codec is the serializer used by the serialize-roundtrip mode.
// RoundTrip must return a value of the same Go type as v, dynamic types included.
type Codec interface {
	RoundTrip(v any) (any, error)
}

// New returns the isolator for the mode. An unknown mode falls back to none;
// modes are validated by config.Normalize.
func New(mode config.IsolationMode, codec Codec) Isolator {
	switch mode {
	case config.IsolationStructuralShadow:
		return shadower{}
	case config.IsolationDeepClone:
		return cloner{}
	case config.IsolationSerializeRoundtrip:
		return roundtripper{codec: codec}
	default:
		return noop{}
	}
}

type noop struct{}

func (noop) Isolate(v any) (any, error) { return v, nil }

type shadower struct{}

func (shadower) Isolate(v any) (any, error) {
	if m, ok := v.(map[string]any); ok && m != nil {
		return NewShadow(m), nil
	}
	return shallowCopy(v), nil
}

type cloner struct{}

func (cloner) Isolate(v any) (any, error) { return DeepClone(v), nil }

type roundtripper struct {
	codec Codec
}

func (r roundtripper) Isolate(v any) (any, error) {
	return r.codec.RoundTrip(v)
}
