package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// UpdateGoldenEnv, when set, makes Golden rewrite the files it compares.
const UpdateGoldenEnv = "GOLDEN_UPDATE"

// Golden compares got against testdata/<name>.golden.
func Golden(t testing.TB, name string, got []byte) {
	t.Helper()

	goldenPath := filepath.Join("testdata", name+".golden")

	if os.Getenv(UpdateGoldenEnv) != "" {
		require.NoError(t, os.MkdirAll("testdata", 0755))
		require.NoError(t, os.WriteFile(goldenPath, got, 0644))
		return
	}

	want, err := os.ReadFile(goldenPath)
	require.NoError(t, err, "read golden file %s; got:\n%s", goldenPath, got)

	// Compared as strings so a mismatch prints a readable diff.
	assert.Equal(t, string(want), string(got), "output mismatch for %s", name)
}
