package frame

// Defaults applied by New and MinimalFrame.
const (
	DefaultStreamID = "olp:default"
	Gauge           = "olp/frame"
	Units           = "delta_scale:fraction"

	// MinimalClaimID is the fixed id of the single node in a minimal frame.
	MinimalClaimID = "C1"
	// MinimalClaimWeight is the confidence attached to a minimal claim.
	MinimalClaimWeight = 0.62
	// MinimalClaimLabel is used when MinimalFrame receives an empty label.
	MinimalClaimLabel = "debug"
)

// KeyDeltaScale is the telemetry key for normalized drift magnitude.
const KeyDeltaScale = "delta_scale"

// NodeType tags a node. The set is open; these are the well-known values.
type NodeType string

const (
	NodeClaim    NodeType = "Claim"
	NodeEvidence NodeType = "Evidence"
	NodeOutcome  NodeType = "Outcome"
)

// Well-known edge relations.
const (
	RelSupports = "supports"
	RelUpdates  = "updates"
)

// Frame is one unit of claim graph data plus telemetry sent to the bus.
type Frame struct {
	StreamID  string    `json:"stream_id"`
	TLogical  int64     `json:"t_logical"`
	Nodes     []Node    `json:"nodes"`
	Edges     []Edge    `json:"edges"`
	Morphs    []Morph   `json:"morphs"`
	Telem     Telemetry `json:"telem"`
	Digest    Digest    `json:"digest"`
	Signature *string   `json:"signature"`
	Gauge     string    `json:"gauge"`
	Units     string    `json:"units"`
}

// Node is a claim graph vertex. Weight is a confidence in [0,1] when set.
type Node struct {
	ID     string         `json:"id"`
	Type   NodeType       `json:"type"`
	Label  string         `json:"label"`
	Attrs  map[string]any `json:"attrs,omitempty"`
	Weight *float64       `json:"weight,omitempty"`
}

// Edge relates two nodes by id. Endpoints may name nodes sent in an
// earlier frame; nothing here checks that.
type Edge struct {
	Src    string  `json:"src"`
	Dst    string  `json:"dst"`
	Rel    string  `json:"rel"`
	Weight float64 `json:"weight"`
}

// Morph is an opaque transformation record.
type Morph map[string]any

// Telemetry maps measurement names to values.
type Telemetry map[string]float64

// DeltaScale returns the delta_scale measurement if present.
func (t Telemetry) DeltaScale() (float64, bool) {
	v, ok := t[KeyDeltaScale]
	return v, ok
}

// Digest is a structural summary of the claim graph.
type Digest struct {
	B0        int     `json:"b0"`
	CyclePlus int     `json:"cycle_plus"`
	XFrontier int     `json:"x_frontier"`
	SOverC    float64 `json:"s_over_c"`
	Depth     int     `json:"depth"`
}

// DefaultDigest describes a single connected, acyclic, flat graph.
func DefaultDigest() Digest {
	return Digest{B0: 1, CyclePlus: 0, XFrontier: 0, SOverC: 1.0, Depth: 0}
}

// NodeIDs returns the node ids in frame order.
func (f Frame) NodeIDs() []string {
	ids := make([]string, len(f.Nodes))
	for i, n := range f.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// Weight returns a pointer to w, for optional node weights.
func Weight(w float64) *float64 {
	return &w
}
