package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"github.com/etnz/papertrade"
	"github.com/etnz/papertrade/httpapi"
)

// serveCmd holds the flags for the 'serve' subcommand.
type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve paper accounts over an HTTP JSON API" }
func (*serveCmd) Usage() string {
	return `pts serve [-addr <host:port>]

  Runs the HTTP API until interrupted. Accounts are kept in memory.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "listen address, overrides the configuration")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.addr != "" {
		cfg.ListenAddr = c.addr
	}
	oracle, err := cfg.Oracle(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading prices: %v\n", err)
		return subcommands.ExitFailure
	}
	publisher, release := newPublisher(cfg)
	defer release()

	api := httpapi.NewServer(papertrade.NewRegistry(oracle), publisher, cfg.Currency, logrus.StandardLogger())
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logrus.WithField("addr", srv.Addr).Info("server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		logrus.WithError(err).Error("server stopped")
		return subcommands.ExitFailure
	case <-ctx.Done():
	}

	logrus.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logrus.WithError(err).Error("server shutdown failed")
		return subcommands.ExitFailure
	}
	logrus.Info("server stopped")
	return subcommands.ExitSuccess
}
