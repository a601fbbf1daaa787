package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/multierr"

	"github.com/2beens/blogsave/internal/blog"
	"github.com/2beens/blogsave/internal/config"
	"github.com/2beens/blogsave/internal/generation"
	"github.com/2beens/blogsave/internal/middleware"
	"github.com/2beens/blogsave/internal/telemetry/metrics"
	"github.com/2beens/blogsave/internal/telemetry/tracing"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config    *config.Config
	generator *generation.Adapter
	repo      *blog.Repo

	// closed on shutdown, in order
	closers []func() error

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	RedisPassword           string
	TGIToken                string
	GenAIAPIKey             string
	HoneycombTracingEnabled bool
	VersionInfo             string
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "blogsave")
	if err != nil {
		return nil, err
	}

	storeSetup, err := NewRecordStore(ctx, NewRecordStoreParams{
		Config:         params.Config,
		RedisPassword:  params.RedisPassword,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		otelShutdown()
		return nil, fmt.Errorf("new record store: %w", err)
	}

	model, err := NewTextModel(ctx, NewTextModelParams{
		Config:      params.Config,
		TGIToken:    params.TGIToken,
		GenAIAPIKey: params.GenAIAPIKey,
	})
	if err != nil {
		otelShutdown()
		return nil, multierr.Append(fmt.Errorf("new text model: %w", err), storeSetup.Close())
	}

	promRegistry := metrics.SetupPrometheus(storeSetup.Collectors...)
	metricsManager := metrics.NewManager("backend", "blogsave", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0) // set to 1 once serving

	return &Server{
		config:      params.Config,
		versionInfo: params.VersionInfo,
		generator:   generation.NewAdapter(model, metricsManager),
		repo:        blog.NewRepo(storeSetup.Store, metricsManager),
		closers:     []func() error{storeSetup.Close},

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	blogHandler := blog.NewHandler(s.generator, s.repo)
	blogHandler.SetupRoutes(r)

	// all the rest - unhandled paths, known paths with a wrong method still get 405
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		log.Tracef("not found: %s %s", req.Method, req.URL.Path)
		http.NotFound(w, req)
	})

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: s.config.GenerationTimeout + time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s], version: %s", ipAndPort, s.versionInfo)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	// stop taking requests before the store goes away
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}

	if err := s.close(); err != nil {
		log.Errorf("failed to close server resources: %s", err)
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}

func (s *Server) close() error {
	var err error
	for _, closeFn := range s.closers {
		err = multierr.Append(err, closeFn())
	}
	return err
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
