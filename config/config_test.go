package config

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte("generator: test\nexternal_buffers: true\nlisten: \":9000\"\n"), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "test", c.Generator)
	assert.True(t, c.ExternalBuffers)
	assert.True(t, c.Binary, "unset fields keep defaults")
	assert.Equal(t, ":9000", c.Listen)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	c := Default()
	c.RequireExtensions = true
	c.RootName = "world"
	require.NoError(t, c.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}

func TestSetGet(t *testing.T) {
	old := Get()
	defer Set(old)

	c := Default()
	c.Generator = "other"
	Set(c)
	assert.Equal(t, "other", Get().Generator)
}
