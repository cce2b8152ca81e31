// Package clef implements the CLEF (Compact Log Event Format) wire
// writer: a single-line JSON object per event with a fixed field
// order, written directly to a byte buffer rather than built as an
// intermediate tree and marshaled — encoding/json over a map cannot
// guarantee field order, and the format is small and fixed enough
// that a streaming writer is both faster and easier to audit for
// escaping correctness.
package clef

import (
	"strconv"

	"github.com/quill-log/quill/core"
)

// AppendLine appends the CLEF JSON line for event to dst, without a
// trailing newline, and returns the extended slice.
func AppendLine(dst []byte, event core.Event) []byte {
	dst = append(dst, '{')

	dst = appendKey(dst, "@t", true)
	dst = appendString(dst, event.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"))

	dst = appendKey(dst, "@mt", false)
	dst = appendString(dst, event.Template)

	dst = appendKey(dst, "@l", false)
	dst = appendString(dst, event.Level.String())

	dst = appendKey(dst, "@m", false)
	dst = appendString(dst, event.Rendered)

	if event.CorrelationID != "" {
		dst = appendKey(dst, "CorrelationId", false)
		dst = appendString(dst, event.CorrelationID)
	}

	for _, p := range event.Properties {
		dst = appendKey(dst, p.Name, false)
		dst = appendValue(dst, p.Value)
	}

	dst = append(dst, '}')
	return dst
}

// AppendProperties appends props as a plain JSON object (no CLEF
// reserved fields), in their original order. Used by the file sink's
// non-CLEF line format.
func AppendProperties(dst []byte, props []core.Property) []byte {
	dst = append(dst, '{')
	for i, p := range props {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = appendString(dst, p.Name)
		dst = append(dst, ':')
		dst = appendValue(dst, p.Value)
	}
	dst = append(dst, '}')
	return dst
}

func appendKey(dst []byte, key string, first bool) []byte {
	if !first {
		dst = append(dst, ',')
	}
	dst = appendString(dst, key)
	dst = append(dst, ':')
	return dst
}

func appendValue(dst []byte, v core.JSONValue) []byte {
	switch v.Kind() {
	case core.KindNull:
		return append(dst, "null"...)
	case core.KindBool:
		b, _ := v.AsBool()
		if b {
			return append(dst, "true"...)
		}
		return append(dst, "false"...)
	case core.KindInt:
		i, _ := v.AsInt()
		return appendIntLiteral(dst, i)
	case core.KindFloat:
		f, _ := v.AsFloat()
		return strconv.AppendFloat(dst, f, 'g', -1, 64)
	case core.KindString:
		s, _ := v.AsString()
		return appendString(dst, s)
	case core.KindArray:
		arr, _ := v.AsArray()
		dst = append(dst, '[')
		for i, item := range arr {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = appendValue(dst, item)
		}
		return append(dst, ']')
	case core.KindObject:
		obj, _ := v.AsObject()
		dst = append(dst, '{')
		for i, f := range obj {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = appendString(dst, f.Name)
			dst = append(dst, ':')
			dst = appendValue(dst, f.Value)
		}
		return append(dst, '}')
	default:
		return append(dst, "null"...)
	}
}

// appendIntLiteral writes i as a plain decimal literal. Large
// integer-typed values outside the JSON-safe integer range are still
// written as plain number literals here: int64 never exceeds that
// range in either direction by more than float64 could already
// represent, so callers needing a wider integer type must encode
// through core.FromString instead.
func appendIntLiteral(dst []byte, i int64) []byte {
	return strconv.AppendInt(dst, i, 10)
}

const hexDigits = "0123456789abcdef"

// appendString appends s as a JSON string literal, using short escapes
// for the standard set and \uXXXX for any other byte below 0x20. Bytes
// at or above 0x20 (other than the escaped set) pass through verbatim;
// the writer is UTF-8-transparent.
func appendString(dst []byte, s string) []byte {
	dst = append(dst, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			dst = append(dst, '\\', '"')
		case '\\':
			dst = append(dst, '\\', '\\')
		case '\b':
			dst = append(dst, '\\', 'b')
		case '\f':
			dst = append(dst, '\\', 'f')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		default:
			if c < 0x20 {
				dst = append(dst, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])
			} else {
				dst = append(dst, c)
			}
		}
	}
	dst = append(dst, '"')
	return dst
}
