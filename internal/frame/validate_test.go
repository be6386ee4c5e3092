package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateMinimalFrame(t *testing.T) {
	require.NoError(t, Validate(MinimalFrame("SPY likely up tomorrow", 0.028, nil)))
}

func TestValidateRichFrame(t *testing.T) {
	f := New(
		WithNodes(
			Node{ID: "O1", Type: NodeOutcome, Label: "Realized +0.5%"},
			Node{ID: "E1", Type: NodeEvidence, Label: "30d minute context", Attrs: map[string]any{"n": 30, "ok": true}},
		),
		WithEdges(Edge{Src: "O1", Dst: "C1", Rel: RelUpdates, Weight: 1}),
		WithMorphs(Morph{"op": "split", "args": []any{"a", "b"}}),
		WithDeltaScale(0.028),
		WithSignature("abc"),
	)
	require.NoError(t, Validate(f))
}

func TestValidateDuplicateNodeIDs(t *testing.T) {
	f := New(WithNodes(
		Node{ID: "C1", Type: NodeClaim, Label: "a"},
		Node{ID: "C1", Type: NodeClaim, Label: "b"},
	))

	err := Validate(f)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Violations, `duplicate node id "C1"`)
}

func TestValidateSchemaViolations(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
	}{
		{"negative delta_scale", MinimalFrame("x", -0.1, nil)},
		{"weight above one", New(WithNodes(Node{ID: "C1", Type: NodeClaim, Weight: Weight(1.5)}))},
		{"empty node id", New(WithNodes(Node{ID: "", Type: NodeClaim}))},
		{"empty node type", New(WithNodes(Node{ID: "C1"}))},
		{"empty edge rel", New(WithEdges(Edge{Src: "a", Dst: "b"}))},
		{"negative digest count", New(WithDigest(Digest{B0: -1}))},
		{"empty stream id", func() Frame { f := New(); f.StreamID = ""; return f }()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.frame)
			require.Error(t, err)
			assert.True(t, IsValidationError(err), "got %v", err)
		})
	}
}

func TestCheckReferencesLocal(t *testing.T) {
	f := New(
		WithNodes(Node{ID: "C1", Type: NodeClaim}, Node{ID: "E1", Type: NodeEvidence}),
		WithEdges(Edge{Src: "E1", Dst: "C1", Rel: RelSupports, Weight: 0.9}),
	)
	require.NoError(t, CheckReferences(f, nil))
}

func TestCheckReferencesKnown(t *testing.T) {
	f := New(
		WithNodes(Node{ID: "E1", Type: NodeEvidence}),
		WithEdges(Edge{Src: "E1", Dst: "C1", Rel: RelSupports, Weight: 0.9}),
	)

	err := CheckReferences(f, nil)
	require.Error(t, err)
	assert.True(t, IsReferenceError(err))

	known := func(id string) bool { return id == "C1" }
	require.NoError(t, CheckReferences(f, known))
}

func TestCheckReferencesListsEveryMissingEndpoint(t *testing.T) {
	f := New(WithEdges(
		Edge{Src: "E1", Dst: "C1", Rel: RelSupports},
		Edge{Src: "O1", Dst: "C1", Rel: RelUpdates},
	))

	err := CheckReferences(f, func(id string) bool { return id == "C1" })
	var re *ReferenceError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, []string{"src:E1", "src:O1"}, re.Missing)
	assert.Contains(t, err.Error(), "src:E1")
}
