package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/olp/internal/delivery"
	"github.com/roach88/olp/internal/frame"
	"github.com/roach88/olp/internal/testutil"
)

var testTime = time.Unix(1700000000, 0).UTC()

// createTestStore opens a fresh ledger in a temp dir.
func createTestStore(t *testing.T, ids ...string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.db")
	opts := []Option{WithClock(testutil.FixedClock(testTime))}
	if len(ids) > 0 {
		opts = append(opts, WithIDGenerator(testutil.NewSequenceIDs(ids...)))
	}
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestOutcome(frameID string, delivered bool, nodeIDs ...string) delivery.Outcome {
	nodes := make([]frame.Node, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		nodes = append(nodes, frame.Node{ID: id, Type: frame.NodeClaim, Label: "claim " + id})
	}
	f := frame.New(
		frame.WithClock(testutil.FixedClock(testTime)),
		frame.WithNodes(nodes...),
	)
	o := delivery.Outcome{
		FrameID:   frameID,
		Frame:     f,
		Endpoint:  "http://bus.test/frame",
		Delivered: delivered,
		Attempts:  1,
	}
	if delivered {
		o.Shape = delivery.ShapeRaw
	} else {
		o.Attempts = 5
		o.LastError = "POST http://bus.test/frame -> 503: busy"
	}
	return o
}
