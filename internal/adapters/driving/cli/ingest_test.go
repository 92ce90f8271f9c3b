package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestCmd_Use(t *testing.T) {
	assert.Equal(t, "ingest [path...]", ingestCmd.Use)
}

func TestIngestCmd_RequiresPaths(t *testing.T) {
	_, err := executeCommand(t, "ingest")
	assert.Error(t, err)
}

func TestIngestCmd_UploadsFiles(t *testing.T) {
	server := newFakeIndexServer(t)
	creds := writeCredentialsFile(t, server.URL)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("alpha"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("beta"), 0o600))

	out, err := executeCommand(t, "ingest", dir, "--credentials", creds)

	require.NoError(t, err)
	assert.Contains(t, out, "Ingested 2 file(s)")
	assert.Contains(t, out, "Ignored 0 file(s)")
	assert.Len(t, server.uploadedIDs(), 2)
}

func TestIngestCmd_DryRunUploadsNothing(t *testing.T) {
	server := newFakeIndexServer(t)
	creds := writeCredentialsFile(t, server.URL)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("alpha"), 0o600))

	out, err := executeCommand(t, "ingest", dir, "--dry-run", "--credentials", creds)

	require.NoError(t, err)
	assert.Contains(t, out, "Would have ingested 1 file(s) (dry run)")
	assert.Empty(t, server.uploadedIDs())
}

func TestIngestCmd_DeduplicatesIdenticalContent(t *testing.T) {
	server := newFakeIndexServer(t)
	creds := writeCredentialsFile(t, server.URL)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("same"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("same"), 0o600))

	out, err := executeCommand(t, "ingest", dir, "--credentials", creds)

	require.NoError(t, err)
	assert.Contains(t, out, "Ingested 1 file(s)")
	assert.Contains(t, out, "Ignored 1 file(s)")
	assert.Len(t, server.uploadedIDs(), 1)
}

func TestIngestCmd_ExplicitTargetSkipsDiscovery(t *testing.T) {
	server := newFakeIndexServer(t)
	creds := writeCredentialsFile(t, server.URL)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("alpha"), 0o600))

	_, err := executeCommand(t, "ingest", dir,
		"--partition", "part-1", "--collection", "col-1", "--credentials", creds)

	require.NoError(t, err)
	assert.Len(t, server.uploadedIDs(), 1)
}
