// Package server is a self-contained stand-in for the KubeAtlas backend and
// its Keycloak realm. It issues real RS256 tokens through the password and
// refresh_token grants and serves the /api/v1 surface the console calls.
package server

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/kubeatlas-console/clients"
	"github.com/jrsteele09/kubeatlas-console/internal/config"
	"github.com/jrsteele09/kubeatlas-console/sessions"
	"github.com/jrsteele09/kubeatlas-console/token"
	"github.com/jrsteele09/kubeatlas-console/token/jwt"
	"github.com/jrsteele09/kubeatlas-console/token/keys"
	"github.com/jrsteele09/kubeatlas-console/token/refresh"
	"github.com/jrsteele09/kubeatlas-console/users"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Repos groups the stores behind the stub.
type Repos struct {
	Users         users.UserRepo
	Clients       clients.Repo
	Sessions      sessions.Repo
	RefreshTokens refresh.Repo
	Revoked       token.RevocationList
}

type Server struct {
	env    string
	mux    *http.ServeMux
	routes []string
	config config.Config
	repos  Repos
	log    zerolog.Logger

	realm     string
	issuer    string
	signer    keys.Signer
	creator   *jwt.Creator
	inspector *jwt.Inspector
	refresh   *refresh.Manager
	startedAt time.Time

	failMu   sync.Mutex
	failNext map[string]int
}

type Option func(*Server)

// WithIssuer overrides the issuer taken from config. Tests use it to point
// the issuer at an httptest server.
func WithIssuer(issuer string) Option {
	return func(s *Server) {
		s.issuer = strings.TrimRight(issuer, "/")
	}
}

// WithSigner supplies the signing key. Without it a fresh key is generated.
func WithSigner(signer keys.Signer) Option {
	return func(s *Server) {
		s.signer = signer
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.log = logger
	}
}

func New(config config.Config, repos Repos, opts ...Option) (*Server, error) {
	if repos.Users == nil || repos.Clients == nil || repos.Sessions == nil || repos.RefreshTokens == nil || repos.Revoked == nil {
		return nil, fmt.Errorf("[Server New] all repositories are required")
	}

	s := &Server{
		env:       config.GetEnv(),
		mux:       http.NewServeMux(),
		config:    config,
		repos:     repos,
		log:       zlog.Logger,
		realm:     config.GetRealm(),
		issuer:    config.GetIssuer(),
		startedAt: time.Now(),
		failNext:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("component", "stub").Logger()

	if s.signer == nil {
		keyPair, err := keys.GenerateRSAKeyPair(s.realm+"-rs256", 2048)
		if err != nil {
			return nil, fmt.Errorf("[Server New] failed to generate signing key: %w", err)
		}
		s.signer = keys.NewKeyPairSigner(keyPair)
	}

	s.creator = jwt.NewCreator(config, s.signer, s.issuer)
	s.inspector = jwt.NewInspector(s.signer, s.issuer, repos.Revoked, s.sessionActive)
	s.refresh = refresh.NewManager(repos.RefreshTokens, config)

	if err := s.InitialiseSystem(config); err != nil {
		return nil, fmt.Errorf("[Server New] Failed to initialise the system: %w", err)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

// Issuer is the realm issuer stamped into every token.
func (s *Server) Issuer() string {
	return s.issuer
}

// TokenURL is the realm token endpoint.
func (s *Server) TokenURL() string {
	return s.issuer + tokenEndpoint
}

// ServeHTTP answers CORS preflights itself since routes are registered per
// method.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		s.CorsMiddleware(func(http.ResponseWriter, *http.Request) {})(w, r)
		return
	}
	s.mux.ServeHTTP(w, r)
}

// FailNext makes the next n authenticated requests to path answer 401
// whatever token they carry.
func (s *Server) FailNext(path string, n int) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	if n <= 0 {
		delete(s.failNext, path)
		return
	}
	s.failNext[path] = n
}

func (s *Server) consumeFailure(path string) bool {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	n, ok := s.failNext[path]
	if !ok {
		return false
	}
	if n <= 1 {
		delete(s.failNext, path)
	} else {
		s.failNext[path] = n - 1
	}
	return true
}

func (s *Server) sessionActive(sessionID string) bool {
	_, err := s.repos.Sessions.Get(sessionID)
	return err == nil
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Printf("[%-19s] %s\n", displayMethod, path)
}

// clientIP prefers the first X-Forwarded-For hop.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return strings.Trim(host, "[]")
}
