package cache

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// KeySeparator delimits cache key segments. Keys follow the
// "<entity>:<segments>" convention that the invalidation layer relies on for
// substring matching, so the entity name always forms the leading segment.
const KeySeparator = ":"

// maxSegmentLen bounds an individual key segment. Longer segments (large
// filter payloads, JSON fallbacks) are collapsed to an xxhash digest so keys
// stay short enough for the durable tier while remaining deterministic.
const maxSegmentLen = 64

// KeySerializer builds a cache key from an entity name plus arbitrary query
// arguments. Implementations must produce stable keys across calls.
type KeySerializer interface {
	SerializeKey(entity string, args ...any) string
}

// defaultKeySerializer serializes arguments reflectively, sorting map keys
// and walking exported struct fields so equal queries always produce equal
// keys within a process.
type defaultKeySerializer struct{}

// NewDefaultKeySerializer returns the default reflection-based serializer.
func NewDefaultKeySerializer() KeySerializer {
	return &defaultKeySerializer{}
}

// SerializeKey builds "<entity>:<seg>:<seg>..." from the entity name and
// args. With no args the key is the bare entity name.
func (s *defaultKeySerializer) SerializeKey(entity string, args ...any) string {
	if len(args) == 0 {
		return entity
	}

	parts := make([]string, 0, len(args)+1)
	parts = append(parts, entity)
	for _, arg := range args {
		parts = append(parts, capSegment(s.serializeValue(arg)))
	}
	return strings.Join(parts, KeySeparator)
}

func (s *defaultKeySerializer) serializeValue(v any) string {
	if v == nil {
		return "nil"
	}

	rv := reflect.ValueOf(v)
	rt := rv.Type()

	switch rt.Kind() {
	case reflect.Func:
		// Stable only within a process; documented caller contract.
		return fmt.Sprintf("func=%p", v)

	case reflect.Ptr:
		if rv.IsNil() {
			return "nil"
		}
		return s.serializeValue(rv.Elem().Interface())

	case reflect.Slice, reflect.Array:
		if rt.Kind() == reflect.Slice && rv.IsNil() {
			return "nil"
		}
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = s.serializeValue(rv.Index(i).Interface())
		}
		return "[" + strings.Join(parts, ",") + "]"

	case reflect.Map:
		if rv.IsNil() {
			return "nil"
		}
		return s.serializeMap(rv)

	case reflect.Struct:
		return s.serializeStruct(rv, rt)

	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return fmt.Sprintf("%v", v)
	}

	return s.jsonFallback(v)
}

// serializeMap emits "k=v" pairs sorted by serialized key for determinism.
func (s *defaultKeySerializer) serializeMap(rv reflect.Value) string {
	pairs := make([]string, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		pairs = append(pairs, s.serializeValue(iter.Key().Interface())+"="+s.serializeValue(iter.Value().Interface()))
	}
	sort.Strings(pairs)
	return "{" + strings.Join(pairs, ",") + "}"
}

func (s *defaultKeySerializer) serializeStruct(rv reflect.Value, rt reflect.Type) string {
	parts := make([]string, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		parts = append(parts, field.Name+"="+s.serializeValue(rv.Field(i).Interface()))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// jsonFallback covers types reflection does not handle directly. Marshal
// failures fall back to the type name rather than panicking; a degenerate
// key still beats a broken cache path.
func (s *defaultKeySerializer) jsonFallback(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "type=" + reflect.TypeOf(v).String()
	}
	return string(data)
}

// capSegment replaces oversized segments with an xxhash digest.
func capSegment(seg string) string {
	if len(seg) <= maxSegmentLen {
		return seg
	}
	return fmt.Sprintf("x%016x", xxhash.Sum64String(seg))
}
