package selection

import (
	"reflect"

	"github.com/aretw0/textfill/pkg/ports"
)

// Normalize turns a raw selection value into an ordered slice of nodes.
//
// A slice (of any element type) keeps its order and drops items that are not nodes,
// a single node becomes a one-element slice, and nil or any other value is empty.
func Normalize(raw any) []ports.Node {
	switch v := raw.(type) {
	case nil:
		return nil
	case []ports.Node:
		out := make([]ports.Node, 0, len(v))
		for _, n := range v {
			if !isNil(n) {
				out = append(out, n)
			}
		}
		return out
	case ports.Node:
		if isNil(v) {
			return nil
		}
		return []ports.Node{v}
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	out := make([]ports.Node, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		item := rv.Index(i)
		if !item.CanInterface() {
			continue
		}
		if n, ok := item.Interface().(ports.Node); ok && !isNil(n) {
			out = append(out, n)
		}
	}
	return out
}

// isNil catches typed nil pointers hidden in an interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func:
		return rv.IsNil()
	}
	return false
}
