package portdiscovery

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilePathPortFileOverride(t *testing.T) {
	t.Setenv("CIDELDILL_PORT_FILE", "/tmp/custom-port-file")
	t.Setenv("CIDELDILL_HOME", "")

	path, err := FilePath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom-port-file", path)
}

func TestFilePathHomeOverride(t *testing.T) {
	t.Setenv("CIDELDILL_PORT_FILE", "")
	t.Setenv("CIDELDILL_HOME", "/tmp/cideldill-home")

	path, err := FilePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/cideldill-home", "port"), path)
}

func TestFilePathDefault(t *testing.T) {
	t.Setenv("CIDELDILL_PORT_FILE", "")
	t.Setenv("CIDELDILL_HOME", "")

	path, err := FilePath()
	require.NoError(t, err)
	assert.Equal(t, "port", filepath.Base(path))
	assert.Equal(t, ".cideldill", filepath.Base(filepath.Dir(path)))
}

func TestWriteReadRemovePort(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CIDELDILL_PORT_FILE", "")
	t.Setenv("CIDELDILL_HOME", dir)

	require.NoError(t, WritePort(54321))

	port, ok := ReadPort()
	require.True(t, ok)
	assert.Equal(t, 54321, port)

	require.NoError(t, RemovePort())

	_, ok = ReadPort()
	assert.False(t, ok)
}

func TestReadPortMissingFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CIDELDILL_PORT_FILE", "")
	t.Setenv("CIDELDILL_HOME", dir)

	_, ok := ReadPort()
	assert.False(t, ok)
}

func TestReadPortInvalidContents(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CIDELDILL_PORT_FILE", filepath.Join(dir, "port"))
	t.Setenv("CIDELDILL_HOME", "")

	require.NoError(t, WritePort(999999))

	_, ok := ReadPort()
	assert.False(t, ok)
}

func TestFindFreePort(t *testing.T) {
	port, err := FindFreePort()
	require.NoError(t, err)
	assert.Greater(t, port, 0)
	assert.LessOrEqual(t, port, 65535)
}
