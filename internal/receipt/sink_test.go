package receipt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/olp/internal/testutil"
)

func TestWriteFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "receipt.latest.json")
	want := Build(spyFields())

	written, err := WriteFile(want, path)
	require.NoError(t, err)
	assert.Equal(t, path, written)

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWriteFileRoundTripDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.json")
	want := Build(Fields{Claim: "X"})

	_, err := WriteFile(want, path)
	require.NoError(t, err)

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWriteFileCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c", "receipt.json")

	_, err := WriteFile(Build(Fields{Claim: "X"}), path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestWriteFileOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipt.json")

	_, err := WriteFile(Build(Fields{Claim: "first", Because: []string{"a", "b", "c", "d"}}), path)
	require.NoError(t, err)
	_, err = WriteFile(Build(Fields{Claim: "second"}), path)
	require.NoError(t, err)

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", got.Claim)
	assert.Empty(t, got.Because)
}

func TestWriteFileDoesNotMutateReceipt(t *testing.T) {
	r := Build(spyFields())
	before := Build(spyFields())

	_, err := WriteFile(r, filepath.Join(t.TempDir(), "r.json"))
	require.NoError(t, err)
	assert.Equal(t, before, r)
}

func TestWriteFileDefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	written, err := WriteFile(Build(Fields{Claim: "X"}), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultPath, written)

	_, err = os.Stat(filepath.Join(dir, "data", "receipt.latest.json"))
	require.NoError(t, err)
}

func TestWriteFileFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	// The parent "directory" is a regular file.
	_, err := WriteFile(Build(Fields{Claim: "X"}), filepath.Join(blocker, "receipt.json"))
	require.Error(t, err)
	assert.True(t, IsPersistenceError(err))

	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "mkdir", pe.Op)
}

func TestReadFileErrors(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(errUnwrap(err)))

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{nope"), 0o644))
	_, err = ReadFile(bad)
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "decode", pe.Op)
}

func errUnwrap(err error) error {
	if pe, ok := err.(*PersistenceError); ok {
		return pe.Err
	}
	return err
}

func TestEncodeGolden(t *testing.T) {
	data, err := Encode(Build(spyFields()))
	require.NoError(t, err)
	testutil.AssertGolden(t, "spy_receipt", data)
}
