// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/survey-engine/pkg/types"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

// --- Load ---

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, KeyOpenAI, "sk-test-123\n")
	writeFile(t, dir, "openalex-email", "  someone@example.com  ")
	writeFile(t, dir, "empty-secret", "   \n")
	writeFile(t, dir, ".hidden", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))

	secrets, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		KeyOpenAI:        "sk-test-123",
		"openalex-email": "someone@example.com",
	}, secrets)
}

func TestLoadMissingDirectory(t *testing.T) {
	secrets, err := Load(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, secrets)
	assert.NotNil(t, secrets)
}

func TestLoadEmptyDirectory(t *testing.T) {
	secrets, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, secrets)
}

// --- Require ---

func TestRequire(t *testing.T) {
	secrets := map[string]string{KeyOpenAI: "sk-abc"}

	tests := []struct {
		name    string
		key     string
		want    string
		wantErr bool
	}{
		{"present key", KeyOpenAI, "sk-abc", false},
		{"missing key", "semantic-scholar-api-key", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Require(secrets, tt.key)
			if tt.wantErr {
				require.Error(t, err)
				var cfgErr *types.ConfigurationError
				require.ErrorAs(t, err, &cfgErr)
				assert.Equal(t, tt.key, cfgErr.Key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequireEmptyValue(t *testing.T) {
	_, err := Require(map[string]string{KeyOpenAI: ""}, KeyOpenAI)
	require.Error(t, err)
}
