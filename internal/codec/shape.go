package codec

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"sync"
)

var ErrShapeMismatch = errors.New("decoded value does not match its shape")

var (
	jsonMarshalerType = reflect.TypeFor[json.Marshaler]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
	holdsIfaceCache   sync.Map // reflect.Type -> bool
	fieldsCache       sync.Map // reflect.Type -> []int
)

// Shape is what JSON loses about a value: its Go type and the dynamic type behind each of its
// interfaces, in traversal order. dynamic is nil when JSON's own defaults restore every interface
// exactly (strings, bools, float64, map[string]any, []any).
type Shape struct {
	typ     reflect.Type
	dynamic []reflect.Type
}

// ShapeOf records the shape of v. v must be encodable (no cycles).
func ShapeOf(v any) Shape {
	if v == nil {
		return Shape{}
	}
	s := &shaper{}
	s.walk(reflect.ValueOf(v))

	shape := Shape{typ: reflect.TypeOf(v)}
	if s.lossy {
		shape.dynamic = s.types
	}
	return shape
}

func (s Shape) Type() reflect.Type { return s.typ }

func unmarshal(data []byte, shape Shape) (any, error) {
	if shape.typ == nil {
		return nil, nil
	}

	ptr := reflect.New(shape.typ)
	if err := decode(data, ptr.Interface(), shape.dynamic != nil); err != nil {
		return nil, fmt.Errorf("unmarshal into %s: %w", shape.typ, err)
	}
	if shape.dynamic == nil {
		return ptr.Elem().Interface(), nil
	}

	r := &restorer{types: shape.dynamic}
	out, err := r.restore(ptr.Elem())
	if err != nil {
		return nil, err
	}
	if r.next != len(r.types) {
		return nil, fmt.Errorf("%w: %d of %d interfaces visited", ErrShapeMismatch, r.next, len(r.types))
	}
	return out.Interface(), nil
}

type shaper struct {
	types []reflect.Type
	lossy bool
}

// walk and restore must visit interfaces in the same order.
func (s *shaper) walk(v reflect.Value) {
	if !holdsInterface(v.Type()) {
		return
	}
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			s.types = append(s.types, nil)
			return
		}
		elem := v.Elem()
		s.types = append(s.types, elem.Type())
		if !isNatural(elem.Type()) {
			s.lossy = true
		}
		s.walk(elem)
	case reflect.Pointer:
		if !v.IsNil() {
			s.walk(v.Elem())
		}
	case reflect.Struct:
		for _, i := range fields(v.Type()) {
			s.walk(v.Field(i))
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			s.walk(v.Index(i))
		}
	case reflect.Map:
		for _, k := range sortedKeys(v) {
			s.walk(v.MapIndex(k))
		}
	}
}

type restorer struct {
	types []reflect.Type
	next  int
}

func (r *restorer) take() (reflect.Type, error) {
	if r.next >= len(r.types) {
		return nil, fmt.Errorf("%w: more interfaces than recorded", ErrShapeMismatch)
	}
	t := r.types[r.next]
	r.next++
	return t, nil
}

// restore returns v with the recorded dynamic types put back behind its interfaces.
// Maps, slices and pointees are updated in place.
func (r *restorer) restore(v reflect.Value) (reflect.Value, error) {
	if !holdsInterface(v.Type()) {
		return v, nil
	}
	switch v.Kind() {
	case reflect.Interface:
		want, err := r.take()
		if err != nil {
			return v, err
		}
		if v.IsNil() {
			return v, nil
		}
		elem := v.Elem()
		if want != nil && elem.Type() != want {
			if elem, err = convert(elem, want); err != nil {
				return v, err
			}
		}
		if elem, err = r.restore(elem); err != nil {
			return v, err
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(elem)
		return out, nil

	case reflect.Pointer:
		if v.IsNil() {
			return v, nil
		}
		elem, err := r.restore(v.Elem())
		if err != nil {
			return v, err
		}
		v.Elem().Set(elem)
		return v, nil

	case reflect.Struct:
		out := reflect.New(v.Type()).Elem()
		out.Set(v)
		for _, i := range fields(v.Type()) {
			f, err := r.restore(out.Field(i))
			if err != nil {
				return v, err
			}
			out.Field(i).Set(f)
		}
		return out, nil

	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			e, err := r.restore(v.Index(i))
			if err != nil {
				return v, err
			}
			v.Index(i).Set(e)
		}
		return v, nil

	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		out.Set(v)
		for i := 0; i < out.Len(); i++ {
			e, err := r.restore(out.Index(i))
			if err != nil {
				return v, err
			}
			out.Index(i).Set(e)
		}
		return out, nil

	case reflect.Map:
		for _, k := range sortedKeys(v) {
			e, err := r.restore(v.MapIndex(k))
			if err != nil {
				return v, err
			}
			v.SetMapIndex(k, e)
		}
		return v, nil
	}
	return v, nil
}

// convert re-decodes a generically decoded value into typ.
func convert(v reflect.Value, typ reflect.Type) (reflect.Value, error) {
	if n, ok := v.Interface().(json.Number); ok {
		if out, ok := convertNumber(n, typ); ok {
			return out, nil
		}
	}

	data, err := json.Marshal(v.Interface())
	if err != nil {
		return v, fmt.Errorf("re-encode %s: %w", v.Type(), err)
	}
	out := reflect.New(typ)
	if err = decode(data, out.Interface(), true); err != nil {
		return v, fmt.Errorf("unmarshal into %s: %w", typ, err)
	}
	return out.Elem(), nil
}

func convertNumber(n json.Number, typ reflect.Type) (reflect.Value, bool) {
	switch typ.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(string(n), 10, typ.Bits())
		if err != nil {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(i).Convert(typ), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u, err := strconv.ParseUint(string(n), 10, typ.Bits())
		if err != nil {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(u).Convert(typ), true
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(string(n), typ.Bits())
		if err != nil {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(f).Convert(typ), true
	}
	return reflect.Value{}, false
}

// isNatural reports whether JSON decodes into t by itself when the target is an interface.
func isNatural(t reflect.Type) bool {
	switch t {
	case reflect.TypeFor[string](), reflect.TypeFor[bool](), reflect.TypeFor[float64](),
		reflect.TypeFor[map[string]any](), reflect.TypeFor[[]any]():
		return true
	}
	return false
}

// isOpaque reports whether t encodes itself, so its internals are not walked.
func isOpaque(t reflect.Type) bool {
	if t.Kind() == reflect.Interface {
		return false
	}
	pt := reflect.PointerTo(t)
	return t.Implements(jsonMarshalerType) || pt.Implements(jsonMarshalerType) ||
		t.Implements(textMarshalerType) || pt.Implements(textMarshalerType)
}

// holdsInterface reports whether a value of type t may contain an interface that JSON encodes.
func holdsInterface(t reflect.Type) bool {
	if v, ok := holdsIfaceCache.Load(t); ok {
		return v.(bool)
	}
	holds := scanType(t, make(map[reflect.Type]bool))
	holdsIfaceCache.Store(t, holds)
	return holds
}

func scanType(t reflect.Type, visiting map[reflect.Type]bool) bool {
	if t.Kind() == reflect.Interface {
		return !t.Implements(jsonMarshalerType) && !t.Implements(textMarshalerType)
	}
	if isOpaque(t) || visiting[t] {
		return false
	}
	visiting[t] = true

	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Array, reflect.Map:
		return scanType(t.Elem(), visiting)
	case reflect.Struct:
		for _, i := range fields(t) {
			if scanType(t.Field(i).Type, visiting) {
				return true
			}
		}
	}
	return false
}

// fields lists the struct fields JSON encodes and reflection can set.
func fields(t reflect.Type) []int {
	if v, ok := fieldsCache.Load(t); ok {
		return v.([]int)
	}
	idx := make([]int, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Tag.Get("json") == "-" {
			continue
		}
		idx = append(idx, i)
	}
	fieldsCache.Store(t, idx)
	return idx
}

// sortedKeys orders map keys by their printed form so that two equal maps are walked alike.
func sortedKeys(m reflect.Value) []reflect.Value {
	type named struct {
		key  reflect.Value
		name string
	}
	keys := m.MapKeys()
	ordered := make([]named, len(keys))
	for i, k := range keys {
		ordered[i] = named{key: k, name: fmt.Sprint(k.Interface())}
	}
	slices.SortFunc(ordered, func(a, b named) int {
		return strings.Compare(a.name, b.name)
	})
	for i := range ordered {
		keys[i] = ordered[i].key
	}
	return keys
}
