/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package invite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "invitations.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadCodes(t *testing.T) {
	path := writeFile(t, "codes:\n  - ABC123\n  - ' XYZ789 '\n  - ''\n")

	codes, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, codes.Len())
	assert.True(t, codes.Admit("ABC123"))
	assert.True(t, codes.Admit("XYZ789"))
	assert.True(t, codes.Admit(" ABC123 "))
	assert.False(t, codes.Admit("abc123"))
	assert.False(t, codes.Admit(DefaultCode))
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	codes, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	assert.Equal(t, 1, codes.Len())
	assert.True(t, codes.Admit(DefaultCode))
}

func TestLoadMalformedFileFallsBack(t *testing.T) {
	codes, err := Load(writeFile(t, "codes: [unterminated"))
	require.Error(t, err)
	assert.True(t, codes.Admit(DefaultCode))
}

func TestLoadEmptyListFallsBack(t *testing.T) {
	codes, err := Load(writeFile(t, "codes: []\n"))
	require.Error(t, err)
	assert.True(t, codes.Admit(DefaultCode))
}
