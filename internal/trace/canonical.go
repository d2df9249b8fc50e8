package trace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// Encode produces the stable JSON snapshot of a named chain's events.
// Errors are part of the snapshot so a changed failure also changes the file.
func Encode(name string, r *Result) ([]byte, error) {
	events := make([]any, len(r.Events))
	for i, ev := range r.Events {
		events[i] = eventMap(ev)
	}
	errs := make([]any, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return Marshal(map[string]any{
		"name":   name,
		"pass":   r.Pass,
		"events": events,
		"errors": errs,
	})
}

func eventMap(ev Event) map[string]any {
	m := map[string]any{
		"seq":  ev.Seq,
		"type": ev.Type,
	}
	set := func(k, v string) {
		if v != "" {
			m[k] = v
		}
	}
	set("method", ev.Method)
	set("path", ev.Path)
	set("outcome", ev.Outcome)
	set("body", ev.Body)
	set("detail", ev.Detail)
	if ev.Request != 0 {
		m["request"] = ev.Request
	}
	if ev.Status != 0 {
		m["status"] = ev.Status
	}
	return m
}

// Marshal encodes strings, integers, booleans, []any and map[string]any.
// Nulls and floats are rejected.
func Marshal(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is not encodable")
	case string:
		return marshalString(val)
	case int:
		return []byte(fmt.Sprintf("%d", val)), nil
	case int64:
		return []byte(fmt.Sprintf("%d", val)), nil
	case bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case []any:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := Marshal(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case map[string]any:
		return marshalObject(val)
	case float32, float64:
		return nil, fmt.Errorf("floats are not encodable: %v", val)
	default:
		return nil, fmt.Errorf("unsupported type %T", v)
	}
}

func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

func marshalObject(obj map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return lessUTF16(keys[i], keys[j]) })

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := marshalString(k)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := Marshal(obj[k])
		if err != nil {
			return nil, fmt.Errorf("%q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// lessUTF16 orders strings by UTF-16 code units.
func lessUTF16(a, b string) bool {
	ua := utf16.Encode([]rune(a))
	ub := utf16.Encode([]rune(b))
	for i := 0; i < len(ua) && i < len(ub); i++ {
		if ua[i] != ub[i] {
			return ua[i] < ub[i]
		}
	}
	return len(ua) < len(ub)
}
