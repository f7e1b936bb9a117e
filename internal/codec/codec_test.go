package codec

import (
	"github.com/Borislavv/go-ctx-cache/config"
	"github.com/stretchr/testify/require"
	"reflect"
	"strings"
	"testing"
	"time"
)

type meta struct {
	Lang    string            `json:"lang"`
	Weights map[string]int    `json:"weights"`
	Flags   []bool            `json:"flags"`
	Extra   map[string]string `json:"extra,omitempty"`
}

func roundtrip(t *testing.T, c Codec, v any) any {
	t.Helper()
	data, err := c.Marshal(v)
	require.NoError(t, err)
	out, err := c.Unmarshal(data, ShapeOf(v))
	require.NoError(t, err)
	return out
}

// TestJSON_PreservesType verifies that values decode into the type they were stored with.
func TestJSON_PreservesType(t *testing.T) {
	c, err := New(config.Options{})
	require.NoError(t, err)

	in := meta{Lang: "en-US", Weights: map[string]int{"a": 1}, Flags: []bool{true, false}}
	require.Equal(t, in, roundtrip(t, c, in))

	ptr := &meta{Lang: "fr-FR"}
	out := roundtrip(t, c, ptr)
	require.IsType(t, &meta{}, out)
	require.Equal(t, ptr, out)
	require.NotSame(t, ptr, out)

	doc := map[string]any{"a": map[string]any{"b": 1.0}, "c": "x"}
	require.Equal(t, doc, roundtrip(t, c, doc))
}

// TestJSON_Nil verifies that a nil value survives a round trip.
func TestJSON_Nil(t *testing.T) {
	c := JSON{}
	data, err := c.Marshal(nil)
	require.NoError(t, err)
	out, err := c.Unmarshal(data, Shape{})
	require.NoError(t, err)
	require.Nil(t, out)
}

// TestJSON_Unsupported verifies that unserializable values are reported.
func TestJSON_Unsupported(t *testing.T) {
	_, err := JSON{}.Marshal(map[string]any{"fn": func() {}})
	require.Error(t, err)
}

// TestZstd_Roundtrip verifies that compressed payloads decode to the original value and are smaller.
func TestZstd_Roundtrip(t *testing.T) {
	c, err := New(config.Options{StoreObjectsSerialized: true, CompressionLevel: 2})
	require.NoError(t, err)
	require.IsType(t, &Zstd{}, c)

	in := map[string]any{"big": strings.Repeat("very ", 20000)}
	data, err := c.Marshal(in)
	require.NoError(t, err)

	plain, err := JSON{}.Marshal(in)
	require.NoError(t, err)
	require.Less(t, len(data), len(plain))

	out, err := c.Unmarshal(data, ShapeOf(in))
	require.NoError(t, err)
	require.Equal(t, in, out)
}

// TestZstd_Corrupted verifies that corrupted payloads fail to decode.
func TestZstd_Corrupted(t *testing.T) {
	c, err := New(config.Options{StoreObjectsSerialized: true, CompressionLevel: 1})
	require.NoError(t, err)

	_, err = c.Unmarshal([]byte("not zstd"), ShapeOf(""))
	require.Error(t, err)
}

type envelope struct {
	Kind    string         `json:"kind"`
	Payload any            `json:"payload"`
	Labels  map[string]any `json:"labels,omitempty"`
	Skipped any            `json:"-"`
}

// TestJSON_PreservesDynamicTypes verifies that values behind interfaces keep their Go types.
func TestJSON_PreservesDynamicTypes(t *testing.T) {
	at := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	cases := map[string]any{
		"ints in object":   map[string]any{"n": 1, "neg": -7, "u8": uint8(200)},
		"large int64":      map[string]any{"big": int64(1<<60 + 1), "max": uint64(1<<64 - 1)},
		"ints in array":    []any{1, 2, int64(3), 4.5, "x", true, nil},
		"nested":           map[string]any{"a": []any{map[string]any{"b": 2}}, "c": map[string]int{"d": 3}},
		"typed behind any": map[string]any{"m": meta{Lang: "en-US", Weights: map[string]int{"a": 1}}},
		"pointer":          map[string]any{"p": &meta{Lang: "fr-FR"}},
		"float32":          []any{float32(1.5)},
		"time":             map[string]any{"at": at},
		"struct with any":  envelope{Kind: "k", Payload: []any{1, map[string]any{"x": int32(2)}}, Labels: map[string]any{"w": 3}},
		"named map":        map[string]any{"doc": map[string]any{"n": 1}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, in, roundtrip(t, JSON{}, in))
		})
	}
}

// TestShapeOf_NaturalDocuments verifies that documents JSON decodes exactly carry no dynamic types.
func TestShapeOf_NaturalDocuments(t *testing.T) {
	shape := ShapeOf(map[string]any{"a": []any{1.5, "x", true, nil}, "b": map[string]any{}})
	require.Nil(t, shape.dynamic)
	require.Equal(t, reflect.TypeFor[map[string]any](), shape.Type())

	require.NotNil(t, ShapeOf(map[string]any{"n": 1}).dynamic)
	require.Nil(t, ShapeOf(meta{}).dynamic)
}

// TestJSON_SkippedFields verifies that fields JSON ignores are left out of the shape.
func TestJSON_SkippedFields(t *testing.T) {
	in := envelope{Kind: "k", Payload: 1, Skipped: 2}
	out := roundtrip(t, JSON{}, in).(envelope)
	require.Equal(t, 1, out.Payload)
	require.Nil(t, out.Skipped)
}

// TestJSON_ShapeMismatch verifies that a payload decoded with a foreign shape is reported.
func TestJSON_ShapeMismatch(t *testing.T) {
	data, err := JSON{}.Marshal(map[string]any{"a": 1, "b": 2})
	require.NoError(t, err)

	_, err = JSON{}.Unmarshal(data, ShapeOf(map[string]any{"a": 1}))
	require.ErrorIs(t, err, ErrShapeMismatch)
}

// TestRoundTrip verifies that both codecs return an equal but independent copy.
func TestRoundTrip(t *testing.T) {
	zc, err := New(config.Options{StoreObjectsSerialized: true, CompressionLevel: 1})
	require.NoError(t, err)

	for _, c := range []Codec{JSON{}, zc} {
		in := map[string]any{"n": 1, "list": []any{int64(2)}}
		out, err := c.RoundTrip(in)
		require.NoError(t, err)
		require.Equal(t, in, out)

		out.(map[string]any)["n"] = 5
		require.Equal(t, 1, in["n"])
	}
}
