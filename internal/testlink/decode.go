package testlink

import (
	"maps"
	"slices"
	"strconv"

	"github.com/fedutinova/tlexport/internal/common"
)

// remoteError detects TestLink's error convention: an array whose first
// element is a struct carrying code and message.
func remoteError(method string, reply any) error {
	list, ok := reply.([]any)
	if !ok || len(list) == 0 {
		return nil
	}
	m, ok := list[0].(map[string]any)
	if !ok {
		return nil
	}
	code, hasCode := m["code"]
	msg, hasMsg := m["message"]
	if !hasCode || !hasMsg {
		return nil
	}

	n, _ := strconv.Atoi(asString(code))
	return &common.RemoteError{Method: method, Code: n, Message: asString(msg)}
}

// asString renders scalar XML-RPC values the way TestLink documents them.
// Integers and strings are interchangeable on the wire.
func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "1"
		}
		return "0"
	default:
		return ""
	}
}

// asList accepts an array, a struct keyed by id, or an empty string
// (TestLink's "nothing found").
func asList(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case map[string]any:
		out := make([]any, 0, len(t))
		for _, k := range slices.Sorted(maps.Keys(t)) {
			out = append(out, t[k])
		}
		return out
	default:
		return nil
	}
}
