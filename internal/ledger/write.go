package ledger

import (
	"context"
	"fmt"

	"github.com/roach88/olp/internal/canonical"
	"github.com/roach88/olp/internal/delivery"
)

// RecordDelivery appends one delivery outcome. For delivered frames the
// frame's node ids become known nodes; ids already known keep their first
// delivery.
//
// Implements delivery.Recorder.
func (s *Store) RecordDelivery(ctx context.Context, o delivery.Outcome) error {
	body, err := canonical.Marshal(o.Frame)
	if err != nil {
		return fmt.Errorf("record delivery: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record delivery: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	id := s.ids.NewID()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO deliveries
		(id, frame_id, stream_id, t_logical, endpoint, delivered, attempts, shape, last_error, frame, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		o.FrameID,
		o.Frame.StreamID,
		o.Frame.TLogical,
		o.Endpoint,
		boolToInt(o.Delivered),
		o.Attempts,
		o.Shape,
		o.LastError,
		string(body),
		s.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("record delivery: insert: %w", err)
	}

	if o.Delivered {
		for _, n := range o.Frame.Nodes {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO known_nodes (node_id, stream_id, delivery_id)
				VALUES (?, ?, ?)
				ON CONFLICT(node_id) DO NOTHING
			`, n.ID, o.Frame.StreamID, id)
			if err != nil {
				return fmt.Errorf("record delivery: node %q: %w", n.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record delivery: commit: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
