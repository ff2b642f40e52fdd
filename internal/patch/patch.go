// Package patch deep-merges partial state trees.
//
// A Tree is the JSON-shaped form of a scorecard: nested maps whose leaves are
// scalars or arrays. Maps merge key by key; arrays and scalars are leaves and
// are replaced wholesale, so a patch touching one element of an array must
// carry the whole array.
package patch

import "reflect"

// Tree is a JSON-shaped state tree
type Tree = map[string]any

// Apply returns state with p merged into it. For every path present in p the
// result holds p's value; every other path keeps state's value. Neither
// argument is modified and either may be nil.
func Apply(state, p Tree) Tree {
	out := Clone(state)
	if out == nil {
		out = Tree{}
	}
	merge(out, p)
	return out
}

// merge writes p into dst in place. dst must be exclusively owned.
func merge(dst, p Tree) {
	for k, pv := range p {
		pm, ok := pv.(map[string]any)
		if !ok {
			dst[k] = cloneValue(pv)
			continue
		}
		dm, ok := dst[k].(map[string]any)
		if !ok {
			// missing branch or a leaf being replaced by a subtree
			dm = Tree{}
		}
		merge(dm, pm)
		dst[k] = dm
	}
}

// Diff returns the smallest patch that turns before into after. Keys present
// in before but missing from after are emitted as explicit nil leaves.
func Diff(before, after Tree) Tree {
	d := Tree{}
	for k, av := range after {
		bv, ok := before[k]
		if !ok {
			d[k] = cloneValue(av)
			continue
		}
		am, aIsMap := av.(map[string]any)
		bm, bIsMap := bv.(map[string]any)
		if aIsMap && bIsMap {
			if sub := Diff(bm, am); len(sub) > 0 {
				d[k] = sub
			}
			continue
		}
		if !reflect.DeepEqual(av, bv) {
			d[k] = cloneValue(av)
		}
	}
	for k := range before {
		if _, ok := after[k]; !ok {
			d[k] = nil
		}
	}
	return d
}

// Clone deep-copies a tree. Maps and []any are copied; other leaves are shared.
func Clone(t Tree) Tree {
	if t == nil {
		return nil
	}
	out := make(Tree, len(t))
	for k, v := range t {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		return Clone(tv)
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// Get walks path through nested maps
func Get(t Tree, path ...string) (any, bool) {
	var cur any = t
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// GetString returns the string at path, or "" when absent or not a string
func GetString(t Tree, path ...string) string {
	v, _ := Get(t, path...)
	s, _ := v.(string)
	return s
}
