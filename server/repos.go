package server

import (
	fakeclientrepo "github.com/jrsteele09/kubeatlas-console/clients/fakerepo"
	fakesessionrepo "github.com/jrsteele09/kubeatlas-console/sessions/repofakes"
	"github.com/jrsteele09/kubeatlas-console/token"
	refreshrepofake "github.com/jrsteele09/kubeatlas-console/token/refresh/repofake"
	fakeuserrepo "github.com/jrsteele09/kubeatlas-console/users/repofake"
)

// NewInMemoryRepos returns empty in-memory stores. Nothing survives a
// restart.
func NewInMemoryRepos() Repos {
	return Repos{
		Users:         fakeuserrepo.NewFakeUserRepo(),
		Clients:       fakeclientrepo.NewFakeClientRepo(),
		Sessions:      fakesessionrepo.NewFakeSessionRepo(),
		RefreshTokens: refreshrepofake.NewFakeRefreshTokenRepo(),
		Revoked:       token.NewMemoryRevocationList(nil),
	}
}
