package acquire

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultAliases(t *testing.T) {
	aliases := DefaultAliases()

	require.Equal(t, "New York City", aliases.Canonical("NYC"))
	require.Equal(t, "New York City", aliases.Canonical("Jacob K. Javits Convention Center"))
	require.Equal(t, "Chicago", aliases.Canonical("McCormick Place"))
	require.Equal(t, "London", aliases.Canonical("ExCeL London"))
	require.Equal(t, "Los Angeles", aliases.Canonical("LA"))
}

func TestCanonicalPassThrough(t *testing.T) {
	aliases := DefaultAliases()

	require.Equal(t, "Maastricht", aliases.Canonical("Maastricht"))
	require.Equal(t, "Maastricht", aliases.Canonical("  Maastricht  "))
}

func TestLoadAliases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`aliases:
  NYC: Gotham
  CDMX: Mexico City
`), 0o600))

	aliases, err := LoadAliases(path)
	require.NoError(t, err)

	// Overrides win on conflicts, defaults survive elsewhere.
	require.Equal(t, "Gotham", aliases.Canonical("NYC"))
	require.Equal(t, "Mexico City", aliases.Canonical("CDMX"))
	require.Equal(t, "Los Angeles", aliases.Canonical("LA"))
}

func TestLoadAliasesErrors(t *testing.T) {
	_, err := LoadAliases(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("venues:\n  NYC: Gotham\n"), 0o600))
	_, err = LoadAliases(path)
	require.Error(t, err)
}
