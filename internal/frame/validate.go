package frame

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/olp/internal/canonical"
)

//go:embed schema.cue
var schemaSrc string

// ValidationError lists every structural problem found in a frame.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid frame: %s", strings.Join(e.Violations, "; "))
}

// ReferenceError names edge endpoints that resolve to no known node.
type ReferenceError struct {
	Missing []string // "src:E9" / "dst:C7", in edge order
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("unknown edge endpoints: %s", strings.Join(e.Missing, ", "))
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsReferenceError reports whether err wraps a *ReferenceError.
func IsReferenceError(err error) bool {
	var re *ReferenceError
	return errors.As(err, &re)
}

// cue.Context is not safe for concurrent use, so every schema evaluation
// holds schemaMu.
var (
	schemaMu   sync.Mutex
	schemaOnce sync.Once
	cueCtx     *cue.Context
	frameDef   cue.Value
	schemaErr  error
)

func loadSchema() {
	cueCtx = cuecontext.New()
	v := cueCtx.CompileString(schemaSrc, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		schemaErr = fmt.Errorf("compile frame schema: %w", err)
		return
	}
	frameDef = v.LookupPath(cue.ParsePath("#Frame"))
	if !frameDef.Exists() {
		schemaErr = errors.New("compile frame schema: #Frame not defined")
	}
}

// Validate checks f against the frame schema and rejects duplicate node ids.
// Edge endpoints are not resolved here; see CheckReferences.
func Validate(f Frame) error {
	var violations []string

	seen := make(map[string]bool, len(f.Nodes))
	for _, n := range f.Nodes {
		if seen[n.ID] {
			violations = append(violations, fmt.Sprintf("duplicate node id %q", n.ID))
			continue
		}
		seen[n.ID] = true
	}

	schemaViolations, err := checkSchema(f)
	if err != nil {
		return err
	}
	violations = append(violations, schemaViolations...)

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

func checkSchema(f Frame) ([]string, error) {
	data, err := canonical.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("validate frame: %w", err)
	}

	schemaMu.Lock()
	defer schemaMu.Unlock()

	schemaOnce.Do(loadSchema)
	if schemaErr != nil {
		return nil, schemaErr
	}

	val := cueCtx.CompileBytes(data, cue.Filename("frame.json"))
	if err := val.Err(); err != nil {
		return nil, fmt.Errorf("validate frame: %w", err)
	}

	err = frameDef.Unify(val).Validate(cue.Concrete(true))
	if err == nil {
		return nil, nil
	}

	var out []string
	for _, e := range cueerrors.Errors(err) {
		out = append(out, e.Error())
	}
	return out, nil
}

// KnownFunc reports whether a node id was delivered in an earlier frame.
type KnownFunc func(id string) bool

// CheckReferences verifies that every edge endpoint names a node in f or a
// node accepted by known. A nil known only accepts ids inside f.
func CheckReferences(f Frame, known KnownFunc) error {
	local := make(map[string]bool, len(f.Nodes))
	for _, n := range f.Nodes {
		local[n.ID] = true
	}
	resolves := func(id string) bool {
		if local[id] {
			return true
		}
		return known != nil && known(id)
	}

	var missing []string
	for _, e := range f.Edges {
		if !resolves(e.Src) {
			missing = append(missing, "src:"+e.Src)
		}
		if !resolves(e.Dst) {
			missing = append(missing, "dst:"+e.Dst)
		}
	}
	if len(missing) > 0 {
		return &ReferenceError{Missing: missing}
	}
	return nil
}

// ID returns the content-addressed id of f. Frames that differ only in
// t_logical have different ids.
func ID(f Frame) (string, error) {
	return canonical.Hash(canonical.DomainFrame, f)
}
