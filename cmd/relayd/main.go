// Package main runs the in-memory HTTP relay used by packsync during
// development and tests. It stores recent sealed sync messages per topic and
// serves them to polling clients by sequence cursor.
//
// The relay is an untrusted middleman on a private network. It never sees
// plaintext or keys; it only stores ciphertext envelopes. All state is held
// in memory and lost on process exit.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"packsync/internal/relay"
)

func main() {
	listen := flag.String("listen", ":8080", "listen address")
	level := flag.String("log-level", "info", "log level")
	flag.Parse()

	logger := log.New()
	if lvl, err := log.ParseLevel(*level); err == nil {
		logger.SetLevel(lvl)
	}

	srv := &http.Server{
		Addr:         *listen,
		Handler:      relay.NewServer(logger).Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.WithField("addr", *listen).Info("relay listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Fatal("relay server failed")
	}
}
