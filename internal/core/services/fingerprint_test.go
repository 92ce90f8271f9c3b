package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintBytes_Deterministic(t *testing.T) {
	a := FingerprintBytes([]byte("the same content"))
	b := FingerprintBytes([]byte("the same content"))
	c := FingerprintBytes([]byte("different content"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 40) // 160-bit digest, lowercase hex
	assert.Regexp(t, "^[0-9a-f]{40}$", a)
}

func TestFingerprintBytes_KnownValue(t *testing.T) {
	// SHA-1 of the empty input.
	assert.Equal(t, "da39a3ee5e6b4b0d3255bfef95601890afd80709", FingerprintBytes(nil))
}

func TestFingerprintFile_MatchesBytes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("file content"), 0o600))

	got, err := FingerprintFile(path)
	require.NoError(t, err)
	assert.Equal(t, FingerprintBytes([]byte("file content")), got)
}

func TestFingerprintFile_PathIndependent(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.txt")
	pathB := filepath.Join(dir, "nested", "b.bin")
	require.NoError(t, os.WriteFile(pathA, []byte("payload"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Dir(pathB), 0o700))
	require.NoError(t, os.WriteFile(pathB, []byte("payload"), 0o600))

	fpA, err := FingerprintFile(pathA)
	require.NoError(t, err)
	fpB, err := FingerprintFile(pathB)
	require.NoError(t, err)

	assert.Equal(t, fpA, fpB)
}

func TestFingerprintFile_Missing(t *testing.T) {
	_, err := FingerprintFile(filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "open file")
}
