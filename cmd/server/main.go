package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	actionHandler "govdash/internal/action/handler"
	actionMetrics "govdash/internal/action/metrics"
	actionService "govdash/internal/action/service"
	actionStore "govdash/internal/action/store"
	authHandler "govdash/internal/auth/handler"
	authMetrics "govdash/internal/auth/metrics"
	authService "govdash/internal/auth/service"
	"govdash/internal/auth/store/revocation"
	"govdash/internal/backend"
	"govdash/internal/dashboard"
	dashboardHandler "govdash/internal/dashboard/handler"
	datasetHandler "govdash/internal/dataset/handler"
	datasetMetrics "govdash/internal/dataset/metrics"
	datasetService "govdash/internal/dataset/service"
	fieldHandler "govdash/internal/fieldwork/handler"
	fieldMetrics "govdash/internal/fieldwork/metrics"
	fieldService "govdash/internal/fieldwork/service"
	fieldStore "govdash/internal/fieldwork/store"
	"govdash/internal/i18n"
	jwttoken "govdash/internal/jwt_token"
	"govdash/internal/mapview"
	mapHandler "govdash/internal/mapview/handler"
	mapMetrics "govdash/internal/mapview/metrics"
	"govdash/internal/platform/config"
	"govdash/internal/platform/httpserver"
	"govdash/internal/platform/logger"
	platformMetrics "govdash/internal/platform/metrics"
	platformRedis "govdash/internal/platform/redis"
	rlMetrics "govdash/internal/ratelimit/metrics"
	ratelimit "govdash/internal/ratelimit/middleware"
	rlModels "govdash/internal/ratelimit/models"
	"govdash/internal/ratelimit/store/bucket"
	"govdash/internal/region"
	"govdash/internal/snapshot"
	snapshotMetrics "govdash/internal/snapshot/metrics"
	"govdash/internal/topology"
	httptransport "govdash/internal/transport/http"
	"govdash/internal/transport/ws"
	"govdash/pkg/platform/circuit"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Server.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("govdash exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	platform := platformMetrics.NewWithRegisterer(reg)

	be, err := backend.New(cfg.Backend.URL,
		backend.WithTimeout(cfg.Backend.Timeout),
		backend.WithLogger(log),
		backend.WithMetrics(platform),
		backend.WithBreaker(circuit.New("backend",
			circuit.WithFailureThreshold(cfg.Backend.BreakerThreshold),
			circuit.WithCooldown(cfg.Backend.BreakerCooldown),
		)),
	)
	if err != nil {
		return err
	}

	rc, err := platformRedis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rc != nil {
		defer rc.Close()
	}

	catalog := i18n.Default()
	topo := topology.NewProvider(cfg.Topology.Source, topology.WithLogger(log))
	poller := snapshot.New(be,
		snapshot.WithLogger(log),
		snapshot.WithMetrics(snapshotMetrics.NewWithRegisterer(reg)),
		snapshot.WithInterval(cfg.Polling.Interval),
	)

	var (
		actions actionService.Store
		trl     interface {
			authService.RevocationList
			IsRevoked(ctx context.Context, jti string) (bool, error)
		}
		buckets ratelimit.BucketStore
		authMet = authMetrics.NewWithRegisterer(reg)
	)
	if rc != nil {
		log.Info("using redis for actions, token revocation and rate limits")
		actions = actionStore.NewRedisStore(rc.Client)
		trl = revocation.NewRedisTRL(rc.Client, revocation.WithMetrics(authMet))
		buckets = bucket.NewRedisBucketStore(rc.Client)
	} else {
		actions = actionStore.NewInMemoryStore()
		trl = revocation.NewInMemoryTRL()
		buckets = bucket.NewInMemoryBucketStore()
	}
	limiter := ratelimit.New(buckets,
		ratelimit.WithLogger(log),
		ratelimit.WithMetrics(rlMetrics.NewWithRegisterer(reg)),
		ratelimit.WithDisabled(cfg.RateLimit.Disabled),
		ratelimit.WithLimit(rlModels.ClassLogin, rlModels.Limit{Requests: cfg.RateLimit.LoginRequests, Window: cfg.RateLimit.Window}),
		ratelimit.WithLimit(rlModels.ClassUpload, rlModels.Limit{Requests: cfg.RateLimit.UploadRequests, Window: cfg.RateLimit.Window}),
	)

	actionSvc := actionService.New(actions, be,
		actionService.WithLogger(log),
		actionService.WithMetrics(actionMetrics.NewWithRegisterer(reg)),
		actionService.WithTimeout(cfg.Backend.Timeout),
	)
	mapSvc := mapview.New(topo, poller,
		mapview.WithLogger(log),
		mapview.WithMetrics(mapMetrics.NewWithRegisterer(reg)),
		mapview.WithCatalog(catalog),
		mapview.WithResolver(region.Default),
		mapview.WithActions(actionSvc),
		mapview.WithAnalytics(be),
	)
	datasetSvc := datasetService.New(be, poller,
		datasetService.WithLogger(log),
		datasetService.WithMetrics(datasetMetrics.NewWithRegisterer(reg)),
		datasetService.WithCatalog(catalog),
		datasetService.WithProgressTick(cfg.Upload.ProgressTick),
		datasetService.WithMaxBytes(cfg.Upload.MaxBytes),
	)
	fieldSvc := fieldService.New(fieldStore.NewInMemoryStore(),
		fieldService.WithLogger(log),
		fieldService.WithMetrics(fieldMetrics.NewWithRegisterer(reg)),
	)
	tokens := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer)
	authSvc := authService.New(be, tokens, trl,
		authService.WithLogger(log),
		authService.WithMetrics(authMet),
		authService.WithTokenTTL(cfg.Auth.TokenTTL),
	)
	dashSvc := dashboard.New(mapSvc, fieldSvc, datasetSvc,
		dashboard.WithLogger(log),
		dashboard.WithCatalog(catalog),
	)

	hub := ws.NewHub(mapSvc,
		ws.WithLogger(log),
		ws.WithMetrics(ws.NewMetrics(reg)),
		ws.WithAllowedOrigins(cfg.Server.AllowedOrigins...),
	)
	unsubscribe := poller.Subscribe(hub.Notify)
	defer unsubscribe()

	health := map[string]httptransport.HealthCheck{
		"topology": func(context.Context) error {
			if !topo.Loaded() {
				return errors.New("topology not loaded")
			}
			return nil
		},
	}
	if rc != nil {
		health["redis"] = rc.Health
	}

	deps := httptransport.Deps{
		Logger:      log,
		Latency:     platform,
		Gatherer:    reg,
		Validator:   jwttoken.NewJWTServiceAdapter(tokens),
		Revocations: trl,
		Health:      health,
		Dashboard:   dashboardHandler.New(dashSvc, log),
		Map:         mapHandler.New(mapSvc, catalog, log),
		Actions:     actionHandler.New(actionSvc, mapSvc, log),
		Tasks:       fieldHandler.New(fieldSvc, log),
		Datasets:    datasetHandler.New(datasetSvc, log).WithThrottle(limiter.RateLimit(rlModels.ClassUpload)),
		MapStream:   hub.HandleStream,
	}
	deps.Session = authHandler.New(authSvc, deps.RequireAuth(), log).
		WithThrottle(limiter.RateLimit(rlModels.ClassLogin))

	srv := httpserver.New(cfg.Server.Addr, httptransport.NewRouter(deps))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Warm the boundary cache; a failure is retried on first render.
		_, _ = topo.Get(gctx)
		return nil
	})
	g.Go(func() error {
		return poller.Run(gctx)
	})
	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(func() error {
		log.Info("starting govdash", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	datasetSvc.Wait()
	return err
}
