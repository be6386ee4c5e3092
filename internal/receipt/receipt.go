package receipt

import (
	"maps"
	"math"
	"slices"
	"strconv"

	"github.com/roach88/olp/internal/canonical"
	"github.com/roach88/olp/internal/frame"
)

// DefaultThreshold is the delta_scale tolerance used when none is given.
const DefaultThreshold = 0.03

// Receipt is a standalone audit record for one claim evaluation.
type Receipt struct {
	Claim     string          `json:"claim"`
	Because   []string        `json:"because"`
	But       []string        `json:"but"`
	So        string          `json:"so"`
	Telem     frame.Telemetry `json:"telem"`
	Threshold float64         `json:"threshold"`
	Model     string          `json:"model"`
	Attrs     map[string]any  `json:"attrs"`
}

// Fields are the inputs to Build. Nil fields take their defaults; a nil
// Threshold means DefaultThreshold, while an explicit zero is kept.
type Fields struct {
	Claim     string
	Because   []string
	But       []string
	So        string
	Telem     frame.Telemetry
	Threshold *float64
	Model     string
	Attrs     map[string]any
}

// Threshold returns a pointer to v, for Fields.Threshold.
func Threshold(v float64) *float64 {
	return &v
}

// Build assembles a receipt. Slices and maps are copied, so later changes to
// f do not reach the receipt.
func Build(f Fields) Receipt {
	r := Receipt{
		Claim:     f.Claim,
		Because:   []string{},
		But:       []string{},
		So:        f.So,
		Telem:     frame.Telemetry{},
		Threshold: DefaultThreshold,
		Model:     f.Model,
		Attrs:     maps.Clone(f.Attrs),
	}
	if f.Because != nil {
		r.Because = slices.Clone(f.Because)
	}
	if f.But != nil {
		r.But = slices.Clone(f.But)
	}
	if f.Telem != nil {
		r.Telem = maps.Clone(f.Telem)
	}
	if f.Threshold != nil {
		r.Threshold = *f.Threshold
	}
	return r
}

// ID returns the content-addressed id of r.
func ID(r Receipt) (string, error) {
	return canonical.Hash(canonical.DomainReceipt, r)
}

// Conclusion is the conventional reading of delta_scale against a threshold.
type Conclusion struct {
	WithinTolerance bool
	Text            string
}

// DeriveConclusion compares deltaScale to threshold. A value equal to the
// threshold is within tolerance.
func DeriveConclusion(threshold, deltaScale float64) Conclusion {
	pct := formatPercent(threshold)
	if deltaScale <= threshold {
		return Conclusion{WithinTolerance: true, Text: "Within " + pct + " tolerance, recheck at close"}
	}
	return Conclusion{WithinTolerance: false, Text: "Above " + pct + " tolerance, review before acting"}
}

// formatPercent renders 0.03 as "3%" and 0.025 as "2.5%".
func formatPercent(fraction float64) string {
	pct := math.Round(fraction*1e4) / 1e2
	return strconv.FormatFloat(pct, 'f', -1, 64) + "%"
}
