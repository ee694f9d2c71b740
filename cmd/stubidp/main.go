package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/kubeatlas-console/internal/config"
	"github.com/jrsteele09/kubeatlas-console/internal/logging"
	"github.com/jrsteele09/kubeatlas-console/server"
	"github.com/jrsteele09/kubeatlas-console/token"
	"github.com/jrsteele09/kubeatlas-console/token/keys"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatal().Err(err).Msg("failed to load .env")
	}
	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("error running stub server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	logger := logging.Init(c.GetLogLevel(), c.GetEnv())
	displayAppname(c.GetAppName())

	opts := []server.Option{server.WithLogger(logger)}
	if path := c.GetSigningKeyFile(); path != "" {
		keyPair, err := keys.LoadOrGenerate(c.GetAppName(), path)
		if err != nil {
			return fmt.Errorf("keys.LoadOrGenerate: %w", err)
		}
		opts = append(opts, server.WithSigner(keys.NewKeyPairSigner(keyPair)))
	}

	repos := server.NewInMemoryRepos()
	handler, err := server.New(c, repos, opts...)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sweepRevocations(ctx, logger, repos.Revoked, c.GetRevocationSweepInterval())

	servers := []*http.Server{{Addr: c.GetPort(), Handler: handler}}
	if apiAddr := apiAddress(c.GetAPIBaseURL()); apiAddr != "" && apiAddr != c.GetPort() {
		servers = append(servers, &http.Server{Addr: apiAddr, Handler: handler})
	}

	errs := make(chan error, len(servers))
	for _, srv := range servers {
		go func() {
			errs <- listenAndServe(logger, srv)
		}()
	}

	select {
	case returnError = <-errs:
	case <-waitForStopSignal():
	}
	return errors.Join(returnError, shutdown(servers))
}

// apiAddress returns ":port" of the API base URL, so the dashboard's default
// API port is served too.
func apiAddress(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	host, port, err := net.SplitHostPort(u.Host)
	if err != nil || (host != "localhost" && host != "127.0.0.1") {
		return ""
	}
	return ":" + port
}

func sweepRevocations(ctx context.Context, logger zerolog.Logger, revoked token.RevocationList, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := revoked.Sweep(); removed > 0 {
				logger.Debug().Int("removed", removed).Int("remaining", revoked.Len()).Msg("revocation list swept")
			}
		}
	}
}

func listenAndServe(logger zerolog.Logger, server *http.Server) error {
	logger.Info().Str("addr", server.Addr).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(servers []*http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var errs []error
	for _, server := range servers {
		if err := server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("server.Shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
