package blobmeta

import (
	"fmt"
	"math"
	"time"
)

// Record keys, in the order they appear in every serialized record.
const (
	KeyName                 = "name"
	KeyType                 = "type"
	KeySizeHuman            = "sizeHuman"
	KeySizeBytes            = "sizeBytes"
	KeyLastModified         = "lastModified"
	KeyLastModifiedReadable = "lastModifiedReadable"
	KeyContentDigest        = "contentDigest"
	KeyWidth                = "width"
	KeyHeight               = "height"
	KeyDurationSeconds      = "durationSeconds"
)

// UndeclaredType is recorded as the type of a blob without a declared type.
const UndeclaredType = "undeclared"

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindNullableInt
)

type schemaEntry struct {
	key  string
	kind valueKind
}

// schema is the fixed field order: base attributes, then extras.
var schema = []schemaEntry{
	{KeyName, kindString},
	{KeyType, kindString},
	{KeySizeHuman, kindString},
	{KeySizeBytes, kindInt},
	{KeyLastModified, kindNullableInt},
	{KeyLastModifiedReadable, kindString},
	{KeyContentDigest, kindString},
	{KeyWidth, kindInt},
	{KeyHeight, kindInt},
	{KeyDurationSeconds, kindString},
}

func schemaIndex(key string) (int, bool) {
	for i, e := range schema {
		if e.key == key {
			return i, true
		}
	}
	return -1, false
}

// Field is one key/value entry of a Record. Value is a string, an int64, or
// nil for an unknown lastModified.
type Field struct {
	Key   string
	Value any
}

// Record is the aggregated result of one extraction. Fields are always held
// in schema order and each key appears at most once.
type Record struct {
	fields []Field
}

// BaseAttributes are derived from every blob, whatever its type.
type BaseAttributes struct {
	Name                 string
	Type                 string
	SizeHuman            string
	SizeBytes            int64
	LastModified         *int64 // epoch milliseconds; nil when unknown
	LastModifiedReadable string
}

// ExtraAttributes are filled in by probes; nil fields were not produced.
type ExtraAttributes struct {
	ContentDigest   *string
	Width           *int
	Height          *int
	DurationSeconds *string
}

// NewBaseAttributes derives the base attributes of b.
func NewBaseAttributes(b *Blob) BaseAttributes {
	declared := b.Type()
	if declared == "" {
		declared = UndeclaredType
	}
	base := BaseAttributes{
		Name:      b.Name(),
		Type:      declared,
		SizeHuman: FormatByteSize(float64(b.Size())),
		SizeBytes: b.Size(),
	}
	if lm := b.LastModified(); !lm.IsZero() {
		ms := lm.UnixMilli()
		base.LastModified = &ms
		base.LastModifiedReadable = FormatTimestamp(float64(ms))
	}
	return base
}

// newRecord merges base and extra attributes in schema order, skipping
// extras that are absent.
func newRecord(base BaseAttributes, extra ExtraAttributes) *Record {
	var lastModified any
	if base.LastModified != nil {
		lastModified = *base.LastModified
	}
	fields := []Field{
		{KeyName, base.Name},
		{KeyType, base.Type},
		{KeySizeHuman, base.SizeHuman},
		{KeySizeBytes, base.SizeBytes},
		{KeyLastModified, lastModified},
		{KeyLastModifiedReadable, base.LastModifiedReadable},
	}
	if extra.ContentDigest != nil {
		fields = append(fields, Field{KeyContentDigest, *extra.ContentDigest})
	}
	if extra.Width != nil {
		fields = append(fields, Field{KeyWidth, int64(*extra.Width)})
	}
	if extra.Height != nil {
		fields = append(fields, Field{KeyHeight, int64(*extra.Height)})
	}
	if extra.DurationSeconds != nil {
		fields = append(fields, Field{KeyDurationSeconds, *extra.DurationSeconds})
	}
	return &Record{fields: fields}
}

// NewRecord builds a Record from arbitrary fields. Fields are reordered into
// schema order. Unknown keys, repeated keys and values of the wrong kind are
// rejected with ErrInvalidRecord. Integer values may be given as any Go
// integer type, or as a whole float, and are stored as int64. Values outside
// the int64 range are rejected.
func NewRecord(fields ...Field) (*Record, error) {
	slots := make([]*Field, len(schema))
	for _, f := range fields {
		idx, ok := schemaIndex(f.Key)
		if !ok {
			return nil, newError(ErrInvalidRecord, "NewRecord", fmt.Errorf("unknown key %q", f.Key))
		}
		if slots[idx] != nil {
			return nil, newError(ErrInvalidRecord, "NewRecord", fmt.Errorf("duplicate key %q", f.Key))
		}
		value, err := normalizeValue(schema[idx].kind, f.Value)
		if err != nil {
			return nil, newError(ErrInvalidRecord, "NewRecord", fmt.Errorf("key %q: %w", f.Key, err))
		}
		slots[idx] = &Field{Key: f.Key, Value: value}
	}

	r := &Record{fields: make([]Field, 0, len(fields))}
	for _, s := range slots {
		if s != nil {
			r.fields = append(r.fields, *s)
		}
	}
	return r, nil
}

func normalizeValue(kind valueKind, v any) (any, error) {
	if kind == kindString {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("want string, got %T", v)
		}
		return s, nil
	}
	if v == nil {
		if kind == kindNullableInt {
			return nil, nil
		}
		return nil, fmt.Errorf("want integer, got nil")
	}
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		return uintToInt64(uint64(n))
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		return uintToInt64(n)
	case float32:
		return floatToInt64(float64(n))
	case float64:
		return floatToInt64(n)
	default:
		return nil, fmt.Errorf("want integer, got %T", v)
	}
}

func uintToInt64(n uint64) (any, error) {
	if n > math.MaxInt64 {
		return nil, fmt.Errorf("integer %d overflows int64", n)
	}
	return int64(n), nil
}

// floatToInt64 accepts whole floats in [-2^63, 2^63).
func floatToInt64(n float64) (any, error) {
	if n != math.Trunc(n) || math.IsInf(n, 0) {
		return nil, fmt.Errorf("want integer, got %v", n)
	}
	if n < -(1<<63) || n >= 1<<63 {
		return nil, fmt.Errorf("integer %v overflows int64", n)
	}
	return int64(n), nil
}

// Fields returns a copy of the record's fields in order.
func (r *Record) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Keys returns the record's keys in order.
func (r *Record) Keys() []string {
	keys := make([]string, len(r.fields))
	for i, f := range r.fields {
		keys[i] = f.Key
	}
	return keys
}

// Len returns the number of fields present.
func (r *Record) Len() int { return len(r.fields) }

// Get returns the value stored under key.
func (r *Record) Get(key string) (any, bool) {
	for _, f := range r.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Has reports whether key is present.
func (r *Record) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// StringValue returns the string value stored under key.
func (r *Record) StringValue(key string) (string, bool) {
	v, ok := r.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// IntValue returns the integer value stored under key.
func (r *Record) IntValue(key string) (int64, bool) {
	v, ok := r.Get(key)
	if !ok {
		return 0, false
	}
	n, ok := v.(int64)
	return n, ok
}

// LastModifiedTime returns the recorded modification time, if known.
func (r *Record) LastModifiedTime() (time.Time, bool) {
	ms, ok := r.IntValue(KeyLastModified)
	if !ok {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}
