package spec

import (
	"encoding/json"
	"fmt"
)

// preservedKey is never pruned, even when empty.
const preservedKey = "auth"

// Document is a request payload in provider wire format.
type Document map[string]any

// Prune recursively removes nil values, empty lists and empty objects.
// The "auth" key is left untouched. Pruning a pruned document is a no-op.
func Prune(doc Document) Document {
	if doc == nil {
		return Document{}
	}
	pruneMap(doc)
	return doc
}

func pruneMap(m map[string]any) {
	for k, v := range m {
		if k == preservedKey {
			continue
		}
		pv, keep := prune(v)
		if !keep {
			delete(m, k)
			continue
		}
		m[k] = pv
	}
}

func prune(v any) (any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case Document:
		pruneMap(t)
		return t, len(t) > 0
	case map[string]any:
		pruneMap(t)
		return t, len(t) > 0
	case []any:
		out := make([]any, 0, len(t))
		for _, e := range t {
			if pe, ok := prune(e); ok {
				out = append(out, pe)
			}
		}
		return out, len(out) > 0
	case []map[string]any:
		out := make([]any, 0, len(t))
		for _, e := range t {
			if pe, ok := prune(e); ok {
				out = append(out, pe)
			}
		}
		return out, len(out) > 0
	case []string:
		return t, len(t) > 0
	case map[string]string:
		return t, len(t) > 0
	default:
		return v, true
	}
}

// clone deep-copies the maps and lists of a caller-supplied value so pruning
// and splicing never reach back into the caller's params.
func clone(v any) any {
	switch t := v.(type) {
	case Document:
		return Document(cloneMap(t))
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = clone(e)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneMap(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	case map[string]string:
		out := make(map[string]string, len(t))
		for k, s := range t {
			out[k] = s
		}
		return out
	default:
		return v
	}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = clone(v)
	}
	return out
}

// Decode converts the document into a typed provider record such as
// *container.Cluster or *compute.Instance.
func (d Document) Decode(out any) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode document into %T: %w", out, err)
	}
	return nil
}

// JSON returns the canonical encoding. Object keys are sorted, so equal
// documents always encode to equal bytes.
func (d Document) JSON() ([]byte, error) {
	return json.Marshal(d)
}

// Object returns the nested object stored at key, or nil.
func (d Document) Object(key string) Document {
	switch t := d[key].(type) {
	case Document:
		return t
	case map[string]any:
		return t
	}
	return nil
}

func optString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func optInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func optBool(p *bool) any {
	if p == nil {
		return nil
	}
	return *p
}

func optStrings(s []string) any {
	if len(s) == 0 {
		return nil
	}
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}

func optMap(m map[string]string) any {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
