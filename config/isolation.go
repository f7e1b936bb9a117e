package config

// IsolationMode defines how values returned by Get are protected from caller mutation.
type IsolationMode string

const (
	// IsolationNone returns the cached reference as is.
	IsolationNone IsolationMode = "none"

	// IsolationStructuralShadow returns a copy-on-write shadow: top-level writes stay on the shadow,
	// nested values are still shared with the cache.
	IsolationStructuralShadow IsolationMode = "structural-shadow"

	// IsolationDeepClone returns a recursive copy of the cached value.
	IsolationDeepClone IsolationMode = "deep-clone"

	// IsolationSerializeRoundtrip returns a copy produced by serializing and deserializing the cached value.
	IsolationSerializeRoundtrip IsolationMode = "serialize-roundtrip"
)

func (m IsolationMode) IsValid() bool {
	switch m {
	case IsolationNone, IsolationStructuralShadow, IsolationDeepClone, IsolationSerializeRoundtrip:
		return true
	default:
		return false
	}
}
