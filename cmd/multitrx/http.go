package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/justforname/osmo-trx/internal/orchestrator"
)

var httpShutdownTimeout = 2 * time.Second

// lifecycle — то, что /healthz знает о процессе.
type lifecycle interface {
	Ready() bool
	State() orchestrator.State
}

// newMux собирает /healthz и /metrics.
func newMux(l lifecycle) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if !l.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(l.State().String()))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// startHTTP поднимает сервер в фоне. Пустой addr — сервер не нужен.
// До проверки конфигурации логгера ещё нет, поэтому ошибки идут в stderr.
func startHTTP(addr string, l lifecycle, stderr io.Writer) *http.Server {
	if addr == "" {
		return nil
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           newMux(l),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(stderr, "http server error: %v\n", err)
		}
	}()
	return srv
}

func stopHTTP(srv *http.Server, stderr io.Writer) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		fmt.Fprintf(stderr, "failed to stop http server: %v\n", err)
	}
}
