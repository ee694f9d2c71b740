package memstore_test

import (
	"testing"

	"github.com/jrsteele09/kubeatlas-console/internal/errors"
	"github.com/jrsteele09/kubeatlas-console/token"
	"github.com/jrsteele09/kubeatlas-console/token/memstore"
	"github.com/stretchr/testify/require"
)

func TestMemStore(t *testing.T) {
	store := memstore.New("kubeatlas")

	_, err := store.Load()
	require.ErrorIs(t, err, errors.ErrNotFound)

	cred := token.Credential{AccessToken: "a", RefreshToken: "r", IDToken: "i"}
	require.NoError(t, store.Save(cred))
	require.Equal(t, 3, store.Len())

	v, ok := store.Get("kubeatlas_refresh_token")
	require.True(t, ok)
	require.Equal(t, "r", v)

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, cred, loaded)

	store.Set("kubeatlas_id_token", "")
	_, err = store.Load()
	require.ErrorIs(t, err, errors.ErrIncompleteCredential)

	require.NoError(t, store.Clear())
	require.Equal(t, 0, store.Len())
}
