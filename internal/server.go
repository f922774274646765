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
	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/fittrack/web/internal/auth"
	"github.com/fittrack/web/internal/backend"
	"github.com/fittrack/web/internal/bmi"
	"github.com/fittrack/web/internal/config"
	"github.com/fittrack/web/internal/dashboard"
	"github.com/fittrack/web/internal/middleware"
	"github.com/fittrack/web/internal/session"
	"github.com/fittrack/web/internal/telemetry/metrics"
	"github.com/fittrack/web/internal/telemetry/tracing"
	"github.com/fittrack/web/internal/web"
	"github.com/fittrack/web/pkg"
)

const (
	sessionsCleanupInterval = time.Hour * 8
	maxRequestDrainBytes    = 256 << 10
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config        *config.Config
	redisClient   *redis.Client
	rateLimiter   middleware.RequestRateLimiter
	sessionStore  session.Store
	cookies       session.CookieSettings
	backendClient *backend.Client
	gate          *session.Gate

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config
	if cfg == nil {
		return nil, errors.New("config not set")
	}

	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("fittrack", "web", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "fittrack-web")
	if err != nil {
		return nil, fmt.Errorf("honeycomb setup: %w", err)
	}

	s := &Server{
		config:      cfg,
		versionInfo: params.VersionInfo,
		cookies: session.CookieSettings{
			Name:   cfg.SessionCookieName,
			Secure: cfg.SessionCookieSecure,
			TTL:    cfg.SessionTTL(),
		},
		rateLimiter:    allowAllLimiter{},
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}

	if cfg.RedisHost != "" {
		s.redisClient = redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			Password: params.RedisPassword,
			DB:       0, // use default DB
		})
		if params.HoneycombTracingEnabled {
			s.redisClient.AddHook(redisotel.NewTracingHook())
		}

		rdbStatus := s.redisClient.Ping(ctx)
		if err := rdbStatus.Err(); err != nil {
			log.Errorf("--> failed to ping redis: %s", err)
		} else {
			log.Debugf("redis ping: %s", rdbStatus.Val())
		}
		s.rateLimiter = redis_rate.NewLimiter(s.redisClient)
	} else {
		log.Warnln("redis host not set, auth rate limiting disabled")
	}

	switch cfg.SessionStore {
	case "redis":
		if s.redisClient == nil {
			return nil, errors.New("redis session store needs redis_host")
		}
		redisStore := session.NewRedisStore(cfg.SessionTTL(), s.redisClient)
		go s.cleanSessionsPeriodically(ctx, redisStore)
		s.sessionStore = redisStore
	case "memory":
		s.sessionStore = session.NewMemoryStore(cfg.SessionTTL())
	default:
		return nil, fmt.Errorf("unknown session store: %s", cfg.SessionStore)
	}

	s.backendClient = backend.NewClient(
		cfg.BackendURL,
		backend.NewTracedHTTPClient(cfg.BackendTimeout()),
		metricsManager,
	)
	s.gate = session.NewGate(s.backendClient, session.GateParams{
		Timeout: cfg.SessionCheckTimeout(),
		Metrics: metricsManager,
	})

	return s, nil
}

func (s *Server) cleanSessionsPeriodically(ctx context.Context, store *session.RedisStore) {
	ticker := time.NewTicker(sessionsCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Debugln("sessions cleanup stopped")
			return
		case <-ticker.C:
			removed := store.ScanAndClean(ctx)
			s.metricsManager.CounterSessionsCleaned.Add(float64(removed))
		}
	}
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("fittrack-router"))

	webHandler := web.NewHandler(s.config.StaticDir)
	webHandler.SetupRoutes(r)

	authHandler := auth.NewHandler(s.backendClient, s.sessionStore, s.cookies)
	authHandler.SetupRoutes(r, s.rateLimiter, s.metricsManager, s.config.LoginRateLimitAllowedPerMin)

	dashboardHandler := dashboard.NewHandler(s.backendClient, s.gate, s.sessionStore, s.cookies)
	dashboardHandler.SetupRoutes(
		r,
		middleware.SessionGate(middleware.SessionGateParams{
			Gate:      s.gate,
			Store:     s.sessionStore,
			Cookies:   s.cookies,
			LoginPath: s.config.LoginPath,
		}),
		webHandler.Index(),
	)

	bmi.NewHandler().SetupRoutes(r)

	r.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
		pkg.WriteTextResponseOK(w, s.versionInfo)
	}).Methods("GET").Name("version")

	// all the rest - assets and unhandled paths
	webHandler.SetupFallback(r)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.RequestID())
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(middleware.DrainAndCloseRequest(maxRequestDrainBytes))

	return r
}

func (s *Server) Serve(host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", metrics.Handler(s.promRegistry))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
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

	// stop taking requests first, in-flight gate mounts still need redis
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

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
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

// allowAllLimiter stands in for the redis limiter when no redis is configured.
type allowAllLimiter struct{}

func (allowAllLimiter) Allow(_ context.Context, _ string, limit redis_rate.Limit) (*redis_rate.Result, error) {
	return &redis_rate.Result{
		Limit:     limit,
		Allowed:   1,
		Remaining: limit.Burst,
	}, nil
}
