package store

import (
	"sort"
	"strings"

	"github.com/playgenz/livescore/internal/patch"
	"github.com/playgenz/livescore/pkg/models"
)

// mergeTolerant applies update to state, dropping only the branches whose
// values would leave the state undecodable. It returns the merged state and
// the dotted paths that were dropped.
func mergeTolerant(state, update patch.Tree, sport models.SportType) (patch.Tree, []string) {
	next := patch.Apply(state, update)
	if validate(next, sport) == nil {
		return next, nil
	}
	return mergeEach(state, update, nil, sport)
}

func mergeEach(state, update patch.Tree, prefix []string, sport models.SportType) (patch.Tree, []string) {
	keys := make([]string, 0, len(update))
	for k := range update {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var dropped []string
	for _, k := range keys {
		path := append(append([]string(nil), prefix...), k)
		next := patch.Apply(state, nest(path, update[k]))
		if validate(next, sport) == nil {
			state = next
			continue
		}
		if sub, ok := update[k].(map[string]any); ok && len(sub) > 0 {
			var d []string
			state, d = mergeEach(state, sub, path, sport)
			dropped = append(dropped, d...)
			continue
		}
		dropped = append(dropped, strings.Join(path, "."))
	}
	return state, dropped
}

// nest wraps v in one map per path segment
func nest(path []string, v any) patch.Tree {
	t := patch.Tree{path[len(path)-1]: v}
	for i := len(path) - 2; i >= 0; i-- {
		t = patch.Tree{path[i]: t}
	}
	return t
}
