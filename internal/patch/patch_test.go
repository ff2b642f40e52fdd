package patch

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseState() Tree {
	return Tree{
		"match": Tree{"id": "m1", "status": "live", "toss": nil},
		"score": Tree{
			"batting": Tree{"runs": 42.0, "wickets": 1.0, "overs": 5.3,
				"extras": Tree{"wide": 2.0, "noBall": 0.0}},
			"bowling": Tree{"team": Tree{"id": "t2"}},
		},
		"recentOvers": []any{Tree{"number": 1.0}, Tree{"number": 2.0}},
		"lastWicket":  "",
	}
}

func TestApply_EmptyPatchIsIdentity(t *testing.T) {
	s := baseState()
	if diff := cmp.Diff(s, Apply(s, Tree{})); diff != "" {
		t.Errorf("Apply(S, {}) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(s, Apply(s, nil)); diff != "" {
		t.Errorf("Apply(S, nil) mismatch (-want +got):\n%s", diff)
	}
}

func TestApply_KeepsSiblingBranches(t *testing.T) {
	s := baseState()
	got := Apply(s, Tree{"score": Tree{"batting": Tree{"runs": 46.0}}})

	runs, _ := Get(got, "score", "batting", "runs")
	wickets, _ := Get(got, "score", "batting", "wickets")
	wide, _ := Get(got, "score", "batting", "extras", "wide")
	bowling := GetString(got, "score", "bowling", "team", "id")

	assert.Equal(t, 46.0, runs)
	assert.Equal(t, 1.0, wickets)
	assert.Equal(t, 2.0, wide)
	assert.Equal(t, "t2", bowling)
	assert.Equal(t, "m1", GetString(got, "match", "id"))
}

func TestApply_ArraysAreAtomic(t *testing.T) {
	s := baseState()
	got := Apply(s, Tree{"recentOvers": []any{Tree{"number": 3.0}}})

	overs, ok := Get(got, "recentOvers")
	require.True(t, ok)
	assert.Equal(t, []any{Tree{"number": 3.0}}, overs)
}

func TestApply_DisjointPatchesCompose(t *testing.T) {
	s := baseState()
	p1 := Tree{"score": Tree{"batting": Tree{"runs": 50.0}}}
	p2 := Tree{"lastWicket": "X b Y 12(9)", "match": Tree{"status": "completed"}}

	a := Apply(Apply(s, p1), p2)
	b := Apply(Apply(s, p2), p1)

	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("disjoint patches depend on order (-p1p2 +p2p1):\n%s", diff)
	}
	runs, _ := Get(a, "score", "batting", "runs")
	assert.Equal(t, 50.0, runs)
	assert.Equal(t, "completed", GetString(a, "match", "status"))
}

func TestApply_LaterPatchWinsPerLeaf(t *testing.T) {
	s := baseState()
	got := Apply(Apply(s, Tree{"score": Tree{"batting": Tree{"runs": 50.0, "wickets": 2.0}}}),
		Tree{"score": Tree{"batting": Tree{"runs": 51.0}}})

	runs, _ := Get(got, "score", "batting", "runs")
	wickets, _ := Get(got, "score", "batting", "wickets")
	assert.Equal(t, 51.0, runs)
	assert.Equal(t, 2.0, wickets)
}

func TestApply_MissingBranches(t *testing.T) {
	tests := []struct {
		name  string
		state Tree
		patch Tree
		path  []string
		want  any
	}{
		{"nil state", nil, Tree{"a": Tree{"b": 1.0}}, []string{"a", "b"}, 1.0},
		{"missing intermediate", Tree{"x": 1.0}, Tree{"a": Tree{"b": Tree{"c": "deep"}}}, []string{"a", "b", "c"}, "deep"},
		{"leaf replaced by subtree", Tree{"a": 5.0}, Tree{"a": Tree{"b": true}}, []string{"a", "b"}, true},
		{"subtree replaced by leaf", Tree{"a": Tree{"b": 1.0}}, Tree{"a": "flat"}, []string{"a"}, "flat"},
		{"explicit nil clears", Tree{"a": Tree{"striker": Tree{"id": "p1"}}}, Tree{"a": Tree{"striker": nil}}, []string{"a", "striker"}, nil},
		{"unknown leaf added", baseState(), Tree{"score": Tree{"batting": Tree{"projected": 160.0}}}, []string{"score", "batting", "projected"}, 160.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Tree
			require.NotPanics(t, func() { got = Apply(tt.state, tt.patch) })
			v, ok := Get(got, tt.path...)
			require.True(t, ok, "path %v missing", tt.path)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestApply_DoesNotMutateInputs(t *testing.T) {
	s := baseState()
	p := Tree{"score": Tree{"batting": Tree{"runs": 99.0}}, "recentOvers": []any{Tree{"number": 9.0}}}
	sBefore := Clone(s)
	pBefore := Clone(p)

	got := Apply(s, p)
	// writes through the result must not reach either input
	got["score"].(Tree)["batting"].(Tree)["wickets"] = 10.0
	got["recentOvers"].([]any)[0].(Tree)["number"] = 0.0

	if diff := cmp.Diff(sBefore, s); diff != "" {
		t.Errorf("state mutated (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(pBefore, p); diff != "" {
		t.Errorf("patch mutated (-want +got):\n%s", diff)
	}
}

func TestDiff_RoundTrip(t *testing.T) {
	before := baseState()
	after := Apply(before, Tree{
		"score":       Tree{"batting": Tree{"runs": 48.0, "overs": 5.4}},
		"recentOvers": []any{Tree{"number": 1.0}, Tree{"number": 2.0}, Tree{"number": 3.0}},
		"partnership": Tree{"runs": 6.0, "balls": 1.0},
	})

	d := Diff(before, after)

	assert.NotContains(t, d, "match")
	assert.NotContains(t, d, "lastWicket")
	batting, _ := Get(d, "score", "batting")
	assert.Equal(t, Tree{"runs": 48.0, "overs": 5.4}, batting)

	if diff := cmp.Diff(after, Apply(before, d)); diff != "" {
		t.Errorf("Apply(before, Diff(before, after)) mismatch (-want +got):\n%s", diff)
	}
}

func TestDiff_RemovedKeysBecomeNil(t *testing.T) {
	before := Tree{"a": 1.0, "b": Tree{"c": 2.0}}
	after := Tree{"b": Tree{"c": 2.0}}

	d := Diff(before, after)
	v, ok := d["a"]
	assert.True(t, ok)
	assert.Nil(t, v)
	assert.Empty(t, Diff(after, after))
}

type card struct {
	Name string  `json:"name"`
	Runs int     `json:"runs"`
	Out  *string `json:"out"`
}

func TestConvert(t *testing.T) {
	tree, err := FromValue(card{Name: "A", Runs: 4})
	require.NoError(t, err)
	assert.Equal(t, Tree{"name": "A", "runs": 4.0, "out": nil}, tree)

	var c card
	require.NoError(t, Decode(Apply(tree, Tree{"runs": 10.0}), &c))
	assert.Equal(t, card{Name: "A", Runs: 10}, c)

	_, err = FromJSON([]byte(`[1,2]`))
	assert.Error(t, err)
}
