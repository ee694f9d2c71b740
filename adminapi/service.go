package adminapi

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/jrsteele09/kubeatlas-console/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultStatisticsTTL = 30 * time.Second

// Requester performs authenticated JSON calls. *apiclient.Client implements it.
type Requester interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

// Service is the typed surface of the KubeAtlas backend API.
type Service struct {
	api Requester
	log zerolog.Logger

	usersShape    ListShape
	rolesShape    ListShape
	sessionsShape ListShape

	statisticsTTL time.Duration
	statistics    *expirable.LRU[string, *StatisticsResponse]
	sessionActive func() bool
}

type ServiceOption func(*Service)

func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = logger
	}
}

// WithUsersShape overrides the list shape expected from GET /admin/users.
func WithUsersShape(shape ListShape) ServiceOption {
	return func(s *Service) {
		s.usersShape = shape
	}
}

// WithRolesShape overrides the list shape expected from GET /admin/users/{id}/roles.
func WithRolesShape(shape ListShape) ServiceOption {
	return func(s *Service) {
		s.rolesShape = shape
	}
}

// WithStatisticsTTL sets how long statistics are served from cache. Zero
// disables caching.
func WithStatisticsTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.statisticsTTL = ttl
	}
}

// WithSessionCheck makes cached results depend on a live session. When
// active reports false the cache is dropped and the backend is asked again,
// so an ended session surfaces its authentication error.
func WithSessionCheck(active func() bool) ServiceOption {
	return func(s *Service) {
		s.sessionActive = active
	}
}

func New(api Requester, opts ...ServiceOption) (*Service, error) {
	if api == nil {
		return nil, errors.New("[adminapi.New] requester is required")
	}

	s := &Service{
		api:           api,
		log:           log.Logger,
		usersShape:    ShapeUsersEnvelope,
		rolesShape:    ShapeArray,
		sessionsShape: ShapeSessionsEnvelope,
		statisticsTTL: defaultStatisticsTTL,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.statisticsTTL > 0 {
		s.statistics = expirable.NewLRU[string, *StatisticsResponse](1, nil, s.statisticsTTL)
	}
	s.log = s.log.With().Str("component", "adminapi").Logger()
	return s, nil
}
