package delivery

import "github.com/roach88/olp/internal/frame"

// Shape names.
const (
	ShapeRaw      = "raw"
	ShapeEnvelope = "envelope"
)

// EnvelopeKey wraps the frame in the envelope shape.
const EnvelopeKey = "frame"

// Shape turns a frame into one candidate request body.
type Shape struct {
	Name   string
	Encode func(frame.Frame) any
}

// RawShape sends the frame object itself.
func RawShape() Shape {
	return Shape{Name: ShapeRaw, Encode: func(f frame.Frame) any { return f }}
}

// EnvelopeShape sends {"frame": <frame>}.
func EnvelopeShape() Shape {
	return Shape{
		Name: ShapeEnvelope,
		Encode: func(f frame.Frame) any {
			return map[string]any{EnvelopeKey: f}
		},
	}
}

// DefaultShapes tries the bare frame first, then the envelope.
func DefaultShapes() []Shape {
	return []Shape{RawShape(), EnvelopeShape()}
}
