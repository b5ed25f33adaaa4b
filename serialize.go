package blobmeta

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const jsonIndent = "  "

// CSVHeader is the first line of every CSV document.
const CSVHeader = "key,value"

// ToJSON renders r as a JSON object indented by two spaces, keys in record
// order, without a trailing newline.
func ToJSON(r *Record) (string, error) {
	if r == nil {
		return "", newError(ErrNothingToSerialize, "ToJSON", nil)
	}
	if len(r.fields) == 0 {
		return "{}", nil
	}

	var b strings.Builder
	b.WriteString("{\n")
	for i, f := range r.fields {
		key, err := marshalJSONValue(f.Key)
		if err != nil {
			return "", newError(ErrInvalidRecord, "ToJSON", err)
		}
		value, err := marshalJSONValue(f.Value)
		if err != nil {
			return "", newError(ErrInvalidRecord, "ToJSON", err)
		}
		b.WriteString(jsonIndent)
		b.Write(key)
		b.WriteString(": ")
		b.Write(value)
		if i < len(r.fields)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteByte('}')
	return b.String(), nil
}

// marshalJSONValue encodes v without HTML escaping.
func marshalJSONValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// ParseJSON reads a JSON object produced by ToJSON back into a Record. Key
// order is preserved and values are checked against the record schema.
func ParseJSON(text string) (*Record, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, newError(ErrInvalidRecord, "ParseJSON", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, newError(ErrInvalidRecord, "ParseJSON", fmt.Errorf("expected object, got %v", tok))
	}

	var fields []Field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, newError(ErrInvalidRecord, "ParseJSON", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, newError(ErrInvalidRecord, "ParseJSON", fmt.Errorf("expected key, got %v", tok))
		}

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return nil, newError(ErrInvalidRecord, "ParseJSON", fmt.Errorf("key %q: %w", key, err))
		}
		value, err := fromJSONValue(raw)
		if err != nil {
			return nil, newError(ErrInvalidRecord, "ParseJSON", fmt.Errorf("key %q: %w", key, err))
		}
		fields = append(fields, Field{Key: key, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, newError(ErrInvalidRecord, "ParseJSON", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, newError(ErrInvalidRecord, "ParseJSON", errors.New("trailing data after object"))
	}

	return NewRecord(fields...)
}

func fromJSONValue(raw any) (any, error) {
	switch v := raw.(type) {
	case nil, string:
		return v, nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return nil, fmt.Errorf("want integer, got %s", v)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("unsupported value %T", raw)
	}
}

// ToCSV renders r as a two-column CSV document: the CSVHeader line, then one
// `"key","value"` line per field in record order with embedded double quotes
// doubled. Lines are joined by "\n" with no trailing newline.
func ToCSV(r *Record) (string, error) {
	if r == nil {
		return "", newError(ErrNothingToSerialize, "ToCSV", nil)
	}

	lines := make([]string, 0, len(r.fields)+1)
	lines = append(lines, CSVHeader)
	for _, f := range r.fields {
		lines = append(lines, csvQuote(f.Key)+","+csvQuote(FormatValue(f.Value)))
	}
	return strings.Join(lines, "\n"), nil
}

func csvQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// FormatValue returns the canonical string form of a record value: strings
// as-is, integers in decimal, and "" for nil.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	default:
		return fmt.Sprint(val)
	}
}
