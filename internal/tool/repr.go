package tool

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Repr renders v as a Python literal, the form the downstream handler and the
// agent transcript show for tool arguments. Map keys are sorted so the output
// is deterministic.
func Repr(v any) string {
	var sb strings.Builder
	writeRepr(&sb, v)
	return sb.String()
}

func writeRepr(sb *strings.Builder, v any) {
	switch x := v.(type) {
	case nil:
		sb.WriteString("None")
	case string:
		sb.WriteString(quoteString(x))
	case bool:
		if x {
			sb.WriteString("True")
		} else {
			sb.WriteString("False")
		}
	case json.Number:
		sb.WriteString(x.String())
	case float64:
		sb.WriteString(formatFloat(x))
	case float32:
		sb.WriteString(formatFloat(float64(x)))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		fmt.Fprintf(sb, "%d", x)
	case map[string]any:
		writeMap(sb, x)
	case []any:
		writeList(sb, x)
	default:
		writeReflect(sb, v)
	}
}

func writeMap(sb *strings.Builder, m map[string]any) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sb.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(quoteString(k))
		sb.WriteString(": ")
		writeRepr(sb, m[k])
	}
	sb.WriteByte('}')
}

func writeList(sb *strings.Builder, l []any) {
	sb.WriteByte('[')
	for i, item := range l {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeRepr(sb, item)
	}
	sb.WriteByte(']')
}

// writeReflect handles typed slices and maps (e.g. []string, map[string]int).
func writeReflect(sb *strings.Builder, v any) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		l := make([]any, rv.Len())
		for i := range l {
			l[i] = rv.Index(i).Interface()
		}
		writeList(sb, l)
	case reflect.Map:
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[fmt.Sprint(iter.Key().Interface())] = iter.Value().Interface()
		}
		writeMap(sb, m)
	case reflect.Pointer:
		if rv.IsNil() {
			sb.WriteString("None")
			return
		}
		writeRepr(sb, rv.Elem().Interface())
	default:
		sb.WriteString(quoteString(fmt.Sprint(v)))
	}
}

// formatFloat follows Python's float repr: positional between 1e-4 and 1e16,
// exponent form outside it. Integral values below 2^53 print without a
// fraction, since JSON decoding turns every number into float64.
func formatFloat(f float64) string {
	abs := math.Abs(f)
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case f == math.Trunc(f) && abs < 1<<53:
		return strconv.FormatInt(int64(f), 10)
	case abs >= 1e-4 && abs < 1e16:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	// Go already pads the exponent to two digits, as Python does
	return strconv.FormatFloat(f, 'e', -1, 64)
}

// quoteString follows Python's str repr: single quotes unless the text holds a
// single quote and no double quote.
func quoteString(s string) string {
	q := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}

	var sb strings.Builder
	sb.WriteByte(q)
	for _, r := range s {
		switch {
		case r == rune(q) || r == '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&sb, `\x%02x`, r)
		case !unicode.IsPrint(r):
			if r <= 0xffff {
				fmt.Fprintf(&sb, `\u%04x`, r)
			} else {
				fmt.Fprintf(&sb, `\U%08x`, r)
			}
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte(q)
	return sb.String()
}
