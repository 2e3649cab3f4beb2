package windows

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNPYStore(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewNPYStore(fs, "/out")
	require.NoError(t, store.EnsureDir())
	require.NoError(t, store.EnsureDir())

	assert.Equal(t, "/out/future_data/c1_30.npy", store.Path("c1_30"))

	ok, err := store.Exists("c1_30")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save("c1_30", []float64{1, 2, 3}))
	ok, err = store.Exists("c1_30")
	require.NoError(t, err)
	assert.True(t, ok)

	values, err := store.Load("c1_30")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, values)

	// no temporary files are left behind
	infos, err := afero.ReadDir(fs, "/out/future_data")
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "c1_30.npy", infos[0].Name())
}

func TestNPYStoreRoundTrip(t *testing.T) {
	values := make([]float64, 6000)
	for i := range values {
		values[i] = 80 + float64(i%90)/3
	}

	fs := afero.NewMemMapFs()
	store := NewNPYStore(fs, "/out")
	require.NoError(t, store.EnsureDir())
	require.NoError(t, store.Save("c7_0", values))

	raw, err := afero.ReadFile(fs, store.Path("c7_0"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("\x93NUMPY")))
	assert.Contains(t, string(raw[:128]), "'descr': '<f8'")
	assert.Contains(t, string(raw[:128]), "(6000,)")

	read, err := store.Load("c7_0")
	require.NoError(t, err)
	assert.Equal(t, values, read)

	// saving again overwrites with identical bytes
	require.NoError(t, store.Save("c7_0", values))
	again, err := afero.ReadFile(fs, store.Path("c7_0"))
	require.NoError(t, err)
	assert.True(t, bytes.Equal(raw, again))
}

func TestNPYStoreLoadErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewNPYStore(fs, "/out")
	require.NoError(t, store.EnsureDir())

	_, err := store.Load("missing")
	assert.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, store.Path("junk"), []byte("not numpy at all"), 0644))
	_, err = store.Load("junk")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/out/future_data/junk.npy")
}

func TestNPYStoreSaveFailure(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	store := NewNPYStore(fs, "/out")
	assert.Error(t, store.Save("c1_0", []float64{1}))
}
