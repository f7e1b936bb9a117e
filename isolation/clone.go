package isolation

import (
	"encoding/json"
	"reflect"
)

// DeepClone returns a recursive copy of v.
// JSON-shaped documents (map[string]any, []any, scalars) are copied without reflection.
// Other maps, slices, arrays, pointers and exported struct fields are copied via reflection;
// unexported struct fields, funcs and channels are copied shallowly.
func DeepClone(v any) any {
	switch t := v.(type) {
	case nil, string, bool, float64, float32, int, int64, int32, uint, uint64, uint32, json.Number:
		return v
	case map[string]any:
		return cloneObject(t)
	case []any:
		return cloneArray(t)
	}
	rv := reflect.ValueOf(v)
	return cloneValue(rv, make(map[seenKey]reflect.Value)).Interface()
}

func cloneObject(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = DeepClone(v)
	}
	return out
}

func cloneArray(a []any) []any {
	if a == nil {
		return nil
	}
	out := make([]any, len(a))
	for i, v := range a {
		out[i] = DeepClone(v)
	}
	return out
}

// seenKey identifies a pointer by address and type: a struct and its first field share an address.
type seenKey struct {
	ptr uintptr
	typ reflect.Type
}

// cloneValue copies rv; seen maps already cloned pointers so that cycles and aliases are preserved.
func cloneValue(rv reflect.Value, seen map[seenKey]reflect.Value) reflect.Value {
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return rv
		}
		key := seenKey{ptr: rv.Pointer(), typ: rv.Type()}
		if out, ok := seen[key]; ok {
			return out
		}
		out := reflect.New(rv.Type().Elem())
		seen[key] = out
		out.Elem().Set(cloneValue(rv.Elem(), seen))
		return out

	case reflect.Interface:
		if rv.IsNil() {
			return rv
		}
		out := reflect.New(rv.Type()).Elem()
		out.Set(cloneValue(rv.Elem(), seen))
		return out

	case reflect.Map:
		if rv.IsNil() {
			return rv
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), cloneValue(iter.Value(), seen))
		}
		return out

	case reflect.Slice:
		if rv.IsNil() {
			return rv
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out.Index(i).Set(cloneValue(rv.Index(i), seen))
		}
		return out

	case reflect.Array:
		out := reflect.New(rv.Type()).Elem()
		for i := 0; i < rv.Len(); i++ {
			out.Index(i).Set(cloneValue(rv.Index(i), seen))
		}
		return out

	case reflect.Struct:
		out := reflect.New(rv.Type()).Elem()
		out.Set(rv)
		for i := 0; i < rv.NumField(); i++ {
			if !rv.Type().Field(i).IsExported() {
				continue
			}
			out.Field(i).Set(cloneValue(rv.Field(i), seen))
		}
		return out

	default:
		return rv
	}
}

// shallowCopy copies the top level of v: slice elements, map entries or the struct behind a pointer.
// Values without shared backing storage are returned as is.
func shallowCopy(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		reflect.Copy(out, rv)
		return out.Interface()
	case reflect.Map:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), iter.Value())
		}
		return out.Interface()
	case reflect.Pointer:
		if rv.IsNil() {
			return v
		}
		out := reflect.New(rv.Type().Elem())
		out.Elem().Set(rv.Elem())
		return out.Interface()
	default:
		return v
	}
}
