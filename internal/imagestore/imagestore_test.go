package imagestore_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PhucDaizz/parkledger/internal/imagestore"
	"github.com/stretchr/testify/require"
)

func TestSaveAndRemove(t *testing.T) {
	store, err := imagestore.New(filepath.Join(t.TempDir(), "plates"))
	require.NoError(t, err)

	payload := []byte{0xff, 0xd8, 0xff, 0xe0}
	path, err := store.Save("30A 111.11", payload)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, payload, data)

	base := filepath.Base(path)
	require.True(t, strings.HasPrefix(base, "30A_111.11_"), "unexpected file name %q", base)
	require.True(t, strings.HasSuffix(base, ".jpg"))

	require.NoError(t, store.Remove(path))
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))

	// Removing an already-missing file is fine.
	require.NoError(t, store.Remove(path))
}

func TestSaveNamesAreUnique(t *testing.T) {
	store, err := imagestore.New(t.TempDir())
	require.NoError(t, err)

	a, err := store.Save("30A-111.11", []byte{1})
	require.NoError(t, err)
	b, err := store.Save("30A-111.11", []byte{2})
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
