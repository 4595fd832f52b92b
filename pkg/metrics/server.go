// Package metrics implements a standalone HTTP server for serving pprof
// profiles, Prometheus metrics, and a health check.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stopkit/stop/pkg/log"
	"github.com/stopkit/stop/pkg/stopgroup"
)

// Server represents a standalone HTTP server for serving metrics and
// debug endpoints.
type Server struct {
	srv *http.Server
}

// Stop shuts down the server.
func (s *Server) Stop() stopgroup.Result {
	c := make(stopgroup.Channel)
	go func() {
		c.Done(s.srv.Shutdown(context.Background()))
	}()

	return c.Result()
}

func handler() http.Handler {
	router := httprouter.New()

	router.Handler(http.MethodGet, "/metrics", promhttp.Handler())
	router.HandlerFunc(http.MethodGet, "/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	// pprof's handlers dispatch on the full URL path, so a single
	// catch-all keeps named runtime profiles reachable.
	router.HandlerFunc(http.MethodGet, "/debug/pprof/*profile", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/debug/pprof/cmdline":
			pprof.Cmdline(w, r)
		case "/debug/pprof/profile":
			pprof.Profile(w, r)
		case "/debug/pprof/symbol":
			pprof.Symbol(w, r)
		case "/debug/pprof/trace":
			pprof.Trace(w, r)
		default:
			pprof.Index(w, r)
		}
	})

	return router
}

// NewServer creates a new instance of a metrics server that
// asynchronously serves requests.
func NewServer(addr string) *Server {
	s := &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler(),
			ReadHeaderTimeout: time.Second * 60,
		},
	}

	go func() {
		if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed while serving metrics", log.Err(err))
		}
	}()

	return s
}
