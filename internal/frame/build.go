package frame

import (
	"maps"
	"time"
)

// Clock returns the current time. Frames read it once, at construction.
type Clock func() time.Time

// Option configures a frame under construction.
type Option func(*builder)

type builder struct {
	frame Frame
	clock Clock
}

// WithStreamID sets the logical stream. Empty values are ignored.
func WithStreamID(id string) Option {
	return func(b *builder) {
		if id != "" {
			b.frame.StreamID = id
		}
	}
}

// WithClock overrides the clock used for t_logical.
func WithClock(c Clock) Option {
	return func(b *builder) {
		if c != nil {
			b.clock = c
		}
	}
}

// WithNodes appends nodes in order.
func WithNodes(nodes ...Node) Option {
	return func(b *builder) {
		b.frame.Nodes = append(b.frame.Nodes, nodes...)
	}
}

// WithEdges appends edges in order.
func WithEdges(edges ...Edge) Option {
	return func(b *builder) {
		b.frame.Edges = append(b.frame.Edges, edges...)
	}
}

// WithMorphs appends morph records in order.
func WithMorphs(morphs ...Morph) Option {
	return func(b *builder) {
		b.frame.Morphs = append(b.frame.Morphs, morphs...)
	}
}

// WithTelem merges telemetry values, overwriting existing keys.
func WithTelem(t Telemetry) Option {
	return func(b *builder) {
		maps.Copy(b.frame.Telem, t)
	}
}

// WithDeltaScale sets the delta_scale telemetry value.
func WithDeltaScale(v float64) Option {
	return func(b *builder) {
		b.frame.Telem[KeyDeltaScale] = v
	}
}

// WithDigest replaces the default digest.
func WithDigest(d Digest) Option {
	return func(b *builder) {
		b.frame.Digest = d
	}
}

// WithSignature attaches an authentication token.
func WithSignature(sig string) Option {
	return func(b *builder) {
		b.frame.Signature = &sig
	}
}

// New builds a frame with the default stream, digest and metadata.
// Collections are never nil so they encode as [] and {}.
func New(opts ...Option) Frame {
	b := &builder{
		frame: Frame{
			StreamID: DefaultStreamID,
			Nodes:    []Node{},
			Edges:    []Edge{},
			Morphs:   []Morph{},
			Telem:    Telemetry{},
			Digest:   DefaultDigest(),
			Gauge:    Gauge,
			Units:    Units,
		},
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.frame.TLogical = b.clock().Unix()
	return b.frame
}

// DefaultAttrs returns the attributes attached to a minimal claim.
func DefaultAttrs() map[string]any {
	return map[string]any{
		"asset_class":  "equity",
		"cadence_pair": "min-hour",
	}
}

// MinimalFrame builds a frame holding exactly one Claim node (id C1), no
// edges, no morphs, and telem.delta_scale = deltaScale.
// A nil attrs uses DefaultAttrs; an empty label becomes "debug".
func MinimalFrame(claimLabel string, deltaScale float64, attrs map[string]any, opts ...Option) Frame {
	if claimLabel == "" {
		claimLabel = MinimalClaimLabel
	}
	if attrs == nil {
		attrs = DefaultAttrs()
	} else {
		attrs = maps.Clone(attrs)
	}

	claim := Node{
		ID:     MinimalClaimID,
		Type:   NodeClaim,
		Label:  claimLabel,
		Attrs:  attrs,
		Weight: Weight(MinimalClaimWeight),
	}

	// Caller options run first; the minimal shape always wins.
	f := New(opts...)
	f.Nodes = []Node{claim}
	f.Edges = []Edge{}
	f.Morphs = []Morph{}
	f.Telem[KeyDeltaScale] = deltaScale
	return f
}
