package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"veriface/internal/auth"
	"veriface/internal/platform/config"
	"veriface/internal/platform/httpserver"
	"veriface/internal/platform/logger"
	platformredis "veriface/internal/platform/redis"
	httptransport "veriface/internal/transport/http"
	"veriface/internal/verification"
	"veriface/internal/verification/adapters"
	vhandler "veriface/internal/verification/handler"
	vmetrics "veriface/internal/verification/metrics"
	vports "veriface/internal/verification/ports"
	vservice "veriface/internal/verification/service"
	attemptstore "veriface/internal/verification/store/attempt"
	whandler "veriface/internal/workflow/handler"
	wmetrics "veriface/internal/workflow/metrics"
	wports "veriface/internal/workflow/ports"
	wservice "veriface/internal/workflow/service"
	decisionstore "veriface/internal/workflow/store/decision"
	"veriface/pkg/platform/audit"
	auditmemory "veriface/pkg/platform/audit/store/memory"
	auditpostgres "veriface/pkg/platform/audit/store/postgres"
	txcontext "veriface/pkg/platform/tx"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(logger.LevelFromEnv())
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	checks := map[string]httptransport.HealthChecker{}

	// Storage: postgres when configured, in-memory otherwise.
	var (
		attempts  vports.AttemptStore
		decisions wports.DecisionStore
		auditSink audit.Store
		txRunner  txcontext.Runner
	)
	if cfg.Postgres.DSN != "" {
		db, err := sql.Open("pgx", cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
		if err := db.PingContext(context.Background()); err != nil {
			return err
		}

		attempts = attemptstore.NewPostgres(db)
		decisions = decisionstore.NewPostgres(db)
		auditSink = auditpostgres.New(db)
		txRunner = txcontext.NewSQLRunner(db)
		checks["postgres"] = dbHealth{db}
		log.Info("using postgres storage")
	} else {
		memAttempts := attemptstore.NewInMemory()
		attempts = memAttempts
		decisions = decisionstore.NewInMemory(memAttempts)
		auditSink = auditmemory.NewInMemoryStore()
		txRunner = txcontext.NoopRunner{}
		log.Warn("no postgres DSN configured, using in-memory storage")
	}
	auditor := audit.NewEmitter(auditSink)

	// Optional redis attempt cache.
	var cache vports.AttemptCache
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		cache = attemptstore.NewRedisCache(redisClient.Client, cfg.Redis.CacheTTL, log)
		checks["redis"] = redisClient
		log.Info("attempt cache enabled")
	}

	policy := verification.DefaultPolicy()
	applyPolicyOverrides(&policy, cfg.Policy)

	vision := adapters.NewHTTPVisionClient(cfg.Vision.BaseURL)
	checks["vision"] = vision

	verifySvc, err := vservice.New(policy, vision, attempts, auditor,
		vservice.WithLogger(log),
		vservice.WithMetrics(vmetrics.New()),
		vservice.WithVisionTimeout(cfg.Vision.Timeout),
		vservice.WithCache(cache),
	)
	if err != nil {
		return err
	}

	workflowSvc, err := wservice.New(attempts, decisions, auditor, txRunner,
		wservice.WithLogger(log),
		wservice.WithMetrics(wmetrics.New()),
		wservice.WithCache(cache),
	)
	if err != nil {
		return err
	}

	jwtService := auth.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Verification:   vhandler.New(verifySvc, log),
		Workflow:       whandler.New(workflowSvc, log),
		Validator:      auth.NewJWTServiceAdapter(jwtService),
		Logger:         log,
		Checks:         checks,
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	srv := httpserver.New(cfg.Server.Addr, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting veriface", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

func applyPolicyOverrides(p *verification.Policy, overrides config.PolicyConfig) {
	if overrides.BaseApprove > 0 {
		p.BaseApprove = overrides.BaseApprove
	}
	if overrides.BaseReject > 0 {
		p.BaseReject = overrides.BaseReject
	}
	if overrides.MaxRelaxation > 0 {
		p.MaxRelaxation = overrides.MaxRelaxation
	}
	if overrides.QualityRaise > 0 {
		p.QualityRaise = overrides.QualityRaise
	}
}

type dbHealth struct {
	db *sql.DB
}

func (h dbHealth) Health(ctx context.Context) error {
	return h.db.PingContext(ctx)
}
