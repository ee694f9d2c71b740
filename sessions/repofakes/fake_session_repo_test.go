package fakesessionrepo_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/kubeatlas-console/internal/errors"
	"github.com/jrsteele09/kubeatlas-console/sessions"
	fakesessionrepo "github.com/jrsteele09/kubeatlas-console/sessions/repofakes"
	"github.com/stretchr/testify/require"
)

func TestFakeSessionRepo(t *testing.T) {
	repo := fakesessionrepo.NewFakeSessionRepo()
	start := time.Now()

	first := &sessions.Session{UserID: "u1", Start: start, LastAccess: start}
	require.NoError(t, repo.Create(first))
	require.Len(t, first.ID, 26)
	second := &sessions.Session{UserID: "u1", Start: start, LastAccess: start}
	require.NoError(t, repo.Create(second))
	require.NoError(t, repo.Create(&sessions.Session{UserID: "u2"}))
	require.ErrorIs(t, repo.Create(&sessions.Session{ID: first.ID}), errors.ErrConflict)

	list, err := repo.ListByUser("u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, first.ID, list[0].ID)

	later := start.Add(time.Minute)
	require.NoError(t, repo.Touch(first.ID, later))
	require.NoError(t, repo.Touch(first.ID, start))
	got, err := repo.Get(first.ID)
	require.NoError(t, err)
	require.True(t, got.LastAccess.Equal(later))

	require.NoError(t, repo.Delete(first.ID))
	_, err = repo.Get(first.ID)
	require.ErrorIs(t, err, errors.ErrSessionNotFound)

	require.Equal(t, 1, repo.DeleteByUser("u1"))
	require.Equal(t, 1, repo.Count())
}
