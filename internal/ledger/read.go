package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/olp/internal/frame"
)

// ErrNotFound is returned when a delivery id is unknown.
var ErrNotFound = errors.New("ledger: delivery not found")

// Delivery is one recorded Send outcome.
type Delivery struct {
	Seq        int64     `json:"seq"`
	ID         string    `json:"id"`
	FrameID    string    `json:"frame_id"`
	StreamID   string    `json:"stream_id"`
	TLogical   int64     `json:"t_logical"`
	Endpoint   string    `json:"endpoint"`
	Delivered  bool      `json:"delivered"`
	Attempts   int       `json:"attempts"`
	Shape      string    `json:"shape,omitempty"`
	LastError  string    `json:"last_error,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

const deliveryColumns = `seq, id, frame_id, stream_id, t_logical, endpoint, delivered, attempts, shape, last_error, recorded_at`

// ListDeliveries returns the most recent limit deliveries, oldest first.
// A limit <= 0 returns every delivery. Returns an empty slice, not nil,
// when the ledger is empty.
func (s *Store) ListDeliveries(ctx context.Context, limit int) ([]Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries ORDER BY seq ASC`
	var args []any
	if limit > 0 {
		query = `SELECT ` + deliveryColumns + ` FROM (
			SELECT * FROM deliveries ORDER BY seq DESC LIMIT ?
		) ORDER BY seq ASC`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query deliveries: %w", err)
	}
	defer rows.Close()

	out := []Delivery{}
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deliveries: %w", err)
	}
	return out, nil
}

// GetDelivery returns a delivery and the frame it carried.
func (s *Store) GetDelivery(ctx context.Context, id string) (Delivery, frame.Frame, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+deliveryColumns+`, frame FROM deliveries WHERE id = ?`, id)

	var (
		d         Delivery
		delivered int
		recorded  int64
		body      string
	)
	err := row.Scan(&d.Seq, &d.ID, &d.FrameID, &d.StreamID, &d.TLogical, &d.Endpoint,
		&delivered, &d.Attempts, &d.Shape, &d.LastError, &recorded, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return Delivery{}, frame.Frame{}, ErrNotFound
	}
	if err != nil {
		return Delivery{}, frame.Frame{}, fmt.Errorf("get delivery: %w", err)
	}
	d.Delivered = delivered == 1
	d.RecordedAt = time.Unix(recorded, 0).UTC()

	// UseNumber keeps integer attrs exact through the round trip.
	var f frame.Frame
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&f); err != nil {
		return Delivery{}, frame.Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	return d, f, nil
}

// KnownNode reports whether id appeared in a delivered frame.
//
// Implements delivery.NodeRegistry.
func (s *Store) KnownNode(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM known_nodes WHERE node_id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("known node: %w", err)
	}
	return true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDelivery(r rowScanner) (Delivery, error) {
	var (
		d         Delivery
		delivered int
		recorded  int64
	)
	if err := r.Scan(&d.Seq, &d.ID, &d.FrameID, &d.StreamID, &d.TLogical, &d.Endpoint,
		&delivered, &d.Attempts, &d.Shape, &d.LastError, &recorded); err != nil {
		return Delivery{}, fmt.Errorf("scan delivery: %w", err)
	}
	d.Delivered = delivered == 1
	d.RecordedAt = time.Unix(recorded, 0).UTC()
	return d, nil
}
