package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/eventhub-auth/auth"
	"github.com/jrsteele09/eventhub-auth/internal/config"
	apperrors "github.com/jrsteele09/eventhub-auth/internal/errors"
	"github.com/jrsteele09/eventhub-auth/internal/logging"
	"github.com/jrsteele09/eventhub-auth/internal/metrics"
	"github.com/jrsteele09/eventhub-auth/server"
	"github.com/jrsteele09/eventhub-auth/token"
	"github.com/jrsteele09/eventhub-auth/users"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return err
	}
	logger := logging.New(c.GetLogLevel(), c.GetEnv())
	if err := c.Validate(); err != nil {
		return apperrors.Wrapf(err, "invalid configuration")
	}
	users.SetHashCost(c.GetBcryptCost())

	ctx := context.Background()
	userRepo, closeStore, err := openUserRepo(ctx, c)
	if err != nil {
		return err
	}
	defer closeStore()

	signer, err := token.NewHMACSigner(c.GetAuthSecret())
	if err != nil {
		return err
	}
	tokens, err := token.New(signer,
		token.WithTokenExpiry(c.GetAccessTokenTTL(), c.GetRefreshTokenTTL()),
		token.WithIssuer(c.GetTokenIssuer()),
	)
	if err != nil {
		return err
	}
	sessions, err := auth.NewSessionService(userRepo, tokens)
	if err != nil {
		return err
	}
	authorizer, err := auth.NewAuthorizer(userRepo, tokens)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	handler, err := server.New(c, server.Services{Sessions: sessions, Authorizer: authorizer},
		server.WithLogger(logger),
		server.WithMetrics(metrics.New(reg), reg),
	)
	if err != nil {
		return err
	}

	displayAppname(c.GetAppName())
	srv := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(srv) }()

	select {
	case err := <-errCh:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(srv)
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && !apperrors.Is(err, http.ErrServerClosed) {
		return apperrors.Wrapf(err, "server.ListenAndServe")
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return apperrors.Wrapf(err, "server.Shutdown")
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
