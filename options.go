package report

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"
)

// Values is the literal form of options at a call site.
type Values = map[string]any

// Options is an open-ended key/value bag shared by a [Job] and its
// [Formatter]. Both sides hold the same pointer, so a write by either is
// visible to the other.
//
// Keys are normalised before use: surrounding whitespace and a leading ':'
// are dropped. Reading a key that was never set yields nil or the zero value
// of the typed accessor.
type Options struct {
	m map[string]any

	// written collects the keys stored or deleted while it is non-nil.
	written map[string]struct{}
}

// NewOptions returns Options holding a deep copy of v.
func NewOptions(v Values) *Options {
	o := &Options{m: make(map[string]any, len(v))}
	for k, val := range v {
		o.m[normalizeKey(k)] = deepCopyValue(val)
	}
	return o
}

func normalizeKey(k string) string {
	return strings.TrimPrefix(strings.TrimSpace(k), ":")
}

// Get returns the value stored under key, or nil.
func (o *Options) Get(key string) any {
	return o.m[normalizeKey(key)]
}

// Lookup returns the value stored under key and whether it was set.
func (o *Options) Lookup(key string) (any, bool) {
	v, ok := o.m[normalizeKey(key)]
	return v, ok
}

// Set stores v under key.
func (o *Options) Set(key string, v any) {
	if o.m == nil {
		o.m = make(map[string]any)
	}
	key = normalizeKey(key)
	o.m[key] = v
	o.touch(key)
}

// SetDefault stores v under key unless the key already holds a non-nil value.
func (o *Options) SetDefault(key string, v any) {
	if o.Get(key) == nil {
		o.Set(key, v)
	}
}

// Has reports whether key holds a non-nil value.
func (o *Options) Has(key string) bool {
	return o.Get(key) != nil
}

// Delete removes key.
func (o *Options) Delete(key string) {
	key = normalizeKey(key)
	delete(o.m, key)
	o.touch(key)
}

func (o *Options) touch(key string) {
	if o.written != nil {
		o.written[key] = struct{}{}
	}
}

// Len returns the number of keys.
func (o *Options) Len() int { return len(o.m) }

// Keys returns the keys in sorted order.
func (o *Options) Keys() []string {
	keys := make([]string, 0, len(o.m))
	for k := range o.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String returns the value under key converted to a string.
func (o *Options) String(key string) string { return cast.ToString(o.Get(key)) }

// Bool returns the value under key converted to a bool.
func (o *Options) Bool(key string) bool { return cast.ToBool(o.Get(key)) }

// BoolOr returns the value under key converted to a bool, or def when unset.
func (o *Options) BoolOr(key string, def bool) bool {
	if !o.Has(key) {
		return def
	}
	return o.Bool(key)
}

// Int returns the value under key converted to an int.
func (o *Options) Int(key string) int { return cast.ToInt(o.Get(key)) }

// Float returns the value under key converted to a float64.
func (o *Options) Float(key string) float64 { return cast.ToFloat64(o.Get(key)) }

// Strings returns the value under key converted to a string slice.
func (o *Options) Strings(key string) []string { return cast.ToStringSlice(o.Get(key)) }

// Map returns the value under key as a string-keyed map. The map is the
// stored one, not a copy, when the value is already a map[string]any.
func (o *Options) Map(key string) map[string]any {
	v := o.Get(key)
	if m, ok := v.(map[string]any); ok {
		return m
	}
	if v == nil {
		return nil
	}
	return cast.ToStringMap(v)
}

// Bind decodes the options into the struct pointed to by dst. Fields are
// matched by their `option` tag, falling back to the field name.
func (o *Options) Bind(dst any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           dst,
		TagName:          "option",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("binding options: %w", err)
	}
	if err := dec.Decode(o.m); err != nil {
		return fmt.Errorf("binding options: %w", err)
	}
	return nil
}

// ToMap returns a deep copy of the options.
func (o *Options) ToMap() Values {
	return deepCopyMap(o.m)
}

// Clone returns an independent deep copy.
func (o *Options) Clone() *Options {
	return &Options{m: deepCopyMap(o.m)}
}

// Equal reports whether o and other hold the same keys and values.
func (o *Options) Equal(other *Options) bool {
	if o == nil || other == nil {
		return o == other
	}
	if len(o.m) != len(other.m) {
		return false
	}
	if len(o.m) == 0 {
		return true
	}
	return reflect.DeepEqual(o.m, other.m)
}

// deepCopyMap copies nested maps and slices so that the result shares no
// mutable containers with src.
func deepCopyMap(src map[string]any) map[string]any {
	if src == nil {
		return map[string]any{}
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = deepCopyValue(v)
	}
	return dst
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case Bundle:
		return Bundle(deepCopyMap(val))
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = deepCopyValue(e)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	default:
		return v
	}
}
