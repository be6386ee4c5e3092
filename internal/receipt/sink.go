package receipt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultPath is where receipts are written when no path is configured.
const DefaultPath = "data/receipt.latest.json"

// PersistenceError reports a failed receipt write or read.
type PersistenceError struct {
	Op   string // "mkdir", "encode", "write", "read", "decode"
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("receipt %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsPersistenceError reports whether err wraps a *PersistenceError.
func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

// Encode renders r as two-space indented JSON with a trailing newline.
// HTML characters are written literally.
func Encode(r Receipt) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile persists r at path, creating parent directories and replacing
// any existing file. An empty path means DefaultPath. Returns the path written.
func WriteFile(r Receipt, path string) (string, error) {
	if path == "" {
		path = DefaultPath
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", &PersistenceError{Op: "mkdir", Path: path, Err: err}
	}

	data, err := Encode(r)
	if err != nil {
		return "", &PersistenceError{Op: "encode", Path: path, Err: err}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &PersistenceError{Op: "write", Path: path, Err: err}
	}
	return path, nil
}

// ReadFile loads a receipt written by WriteFile.
func ReadFile(path string) (Receipt, error) {
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Receipt{}, &PersistenceError{Op: "read", Path: path, Err: err}
	}

	var r Receipt
	if err := json.Unmarshal(data, &r); err != nil {
		return Receipt{}, &PersistenceError{Op: "decode", Path: path, Err: err}
	}
	return r, nil
}
