package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmdSubcommands(t *testing.T) {
	cmd := NewRootCmd()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "migrate")
	assert.NotNil(t, cmd.PersistentFlags().Lookup("env-file"))
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("LEARNSTUDIO_TEST_VALUE=loaded\n"), 0o600))
	t.Setenv("LEARNSTUDIO_TEST_VALUE", "")
	require.NoError(t, os.Unsetenv("LEARNSTUDIO_TEST_VALUE"))

	require.NoError(t, loadEnv(path))
	assert.Equal(t, "loaded", os.Getenv("LEARNSTUDIO_TEST_VALUE"))

	assert.Error(t, loadEnv(filepath.Join(dir, "missing.env")))
}

func TestMigrateMemoryStore(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("ALLOW_INSECURE_DEFAULTS", "true")

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"migrate"})
	cmd.SetOut(os.Stderr)
	assert.NoError(t, cmd.Execute())
}
