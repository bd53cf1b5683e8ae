package docker

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// params is the backing store shared by all query-encoded option sets.
// Unset parameters are entirely absent; the Engine distinguishes a missing
// key from an empty or false value.
type params map[string]string

func (p params) clone() params {
	out := make(params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// encode renders the parameters as a form-urlencoded query string. The
// second return is false when no parameter was ever set.
func (p params) encode() (string, bool) {
	if len(p) == 0 {
		return "", false
	}
	v := url.Values{}
	for key, value := range p {
		v.Set(key, value)
	}
	return v.Encode(), true
}

// filterSet accumulates filter values per filter kind across multiple
// Filter calls. Each call re-serializes the whole union into the `filters`
// query parameter, the JSON-object-of-string-lists shape the Engine
// expects.
type filterSet map[string][]string

func (fs filterSet) add(kind, value string) {
	fs[kind] = append(fs[kind], value)
}

func (fs filterSet) merge(spec map[string][]string) {
	for kind, values := range spec {
		fs[kind] = append(fs[kind], values...)
	}
}

func (fs filterSet) encode() string {
	// json.Marshal of a map is deterministic (keys sorted), which keeps
	// repeated serializations of the same set identical.
	out, _ := json.Marshal(fs)
	return string(out)
}

func boolParam(b bool) string { return strconv.FormatBool(b) }

// body is the backing store for JSON-encoded option sets (volume and
// network create, container create). These serialize to a request body,
// never to a query string.
type body map[string]any

func (b body) clone() body {
	out := make(body, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

func (b body) encode() ([]byte, error) {
	return json.Marshal(b)
}
