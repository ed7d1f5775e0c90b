/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDotEnvMissingFileIsQuiet(t *testing.T) {
	var buf bytes.Buffer

	loadDotEnv(zerolog.New(&buf), filepath.Join(t.TempDir(), ".env"))

	assert.Empty(t, buf.String())
}

func TestLoadDotEnvWarnsOnUnreadableFile(t *testing.T) {
	var buf bytes.Buffer

	loadDotEnv(zerolog.New(&buf), t.TempDir())

	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "failed to load .env file")
}

func TestLoadDotEnvSetsVariables(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TWENTYQ_DOTENV_TEST=yes\n"), 0o600))
	t.Setenv("TWENTYQ_DOTENV_TEST", "")
	require.NoError(t, os.Unsetenv("TWENTYQ_DOTENV_TEST"))

	var buf bytes.Buffer
	loadDotEnv(zerolog.New(&buf), path)

	assert.Equal(t, "yes", os.Getenv("TWENTYQ_DOTENV_TEST"))
	assert.Empty(t, buf.String())
}
