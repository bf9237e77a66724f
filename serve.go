package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"holiday-service/internal/auth"
	"holiday-service/internal/config"
	"holiday-service/internal/db"
	grpcserver "holiday-service/internal/grpc"
	"holiday-service/internal/handlers"
	"holiday-service/internal/jobs"
	"holiday-service/internal/middleware"
	"holiday-service/internal/moderation"
	"holiday-service/internal/notify"
	"holiday-service/internal/observability"
	"holiday-service/internal/rabbitmq"
	"holiday-service/internal/repositories"
	"holiday-service/internal/services"
	"holiday-service/internal/telemetry"
	"holiday-service/internal/ws"
)

const (
	shutdownTimeout = 10 * time.Second
	healthInterval  = 10 * time.Second
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP, websocket and gRPC health servers",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.OTel.Endpoint, cfg.OTel.ServiceName, cfg.Environment)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Error().Err(err).Msg("tracer shutdown failed")
		}
	}()

	database, err := db.ConnectAndMigrate(ctx, cfg.DB.DSN)
	if err != nil {
		return err
	}
	defer database.Close()
	if err := jobs.Migrate(ctx, cfg.DB.DSN); err != nil {
		return err
	}

	publisher := rabbitmq.NewPublisher(rabbitmq.Options{URL: cfg.AMQP.URL, Exchange: cfg.AMQP.Exchange, AppID: cfg.OTel.ServiceName})
	defer publisher.Close()
	observability.SetPublisher(publisher)
	mode, noopReason := rabbitmq.Describe(publisher)
	log.Info().Str("mode", mode).Str("noop_reason", noopReason).Msg("event publisher ready")

	auditor := telemetry.NewAuditEmitter(publisher, cfg.AMQP.AuditRoutingKey, cfg.OTel.ServiceName, cfg.Environment)
	dispatcher := notify.NewDispatcher(publisher, cfg.Notify.QueueSize, cfg.Notify.Workers, cfg.Notify.Timeout)
	defer dispatcher.Close()

	store := repositories.NewStore(database)
	gate := moderation.NewGate(repositories.NewBannedWordRepo(database))
	hub := ws.NewHub()

	resolver := services.NewIdentityResolver(store)
	accounts := services.NewAccountService(store, auditor)

	queue, err := jobs.NewQueue(ctx, cfg.DB.DSN, cfg.Jobs.MaxWorkers, accounts)
	if err != nil {
		return err
	}
	if err := queue.Start(ctx); err != nil {
		return fmt.Errorf("start job queue: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := queue.Stop(stopCtx); err != nil {
			log.Error().Err(err).Msg("job queue stop failed")
		}
	}()

	verifier := auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	limiter := middleware.NewUserRateLimiter(cfg.RateLimit.MessagesPerMinute, cfg.RateLimit.Burst)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		otelgin.Middleware(cfg.OTel.ServiceName),
		middleware.RequestID(),
		observability.HTTPMetricsMiddleware(),
	)
	router.GET("/healthz", func(c *gin.Context) {
		if err := database.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterRoutes(router, handlers.Routes{
		Auth:          middleware.AuthMiddleware(verifier, resolver),
		SendLimit:     limiter.Middleware(),
		Internal:      middleware.InternalToken(cfg.Internal.Token),
		Accounts:      handlers.NewAccountHandler(resolver, queue),
		Profiles:      handlers.NewProfileHandler(services.NewProfileService(store)),
		Connections:   handlers.NewConnectionHandler(services.NewConnectionService(store, dispatcher, auditor, hub)),
		Conversations: handlers.NewConversationHandler(services.NewConversationService(store, gate, auditor, hub)),
		Safety:        handlers.NewSafetyHandler(services.NewSafetyService(store, auditor)),
		Gatherings:    handlers.NewGatheringHandler(services.NewGatheringService(store)),
		ConversationWS: ws.NewConversationWebSocketHandler(hub, verifier, resolver,
			store.Repos().Conversations).Handle,
	})
	handlers.RegisterDebugRoutes(router, auditor, cfg.Debug.Routes)

	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		return fmt.Errorf("listen grpc %s: %w", cfg.GRPC.Addr, err)
	}
	grpcServer := grpcserver.NewServer()
	grpcServer.SetServing(true)
	go grpcServer.Watch(ctx, database, healthInterval)

	errCh := make(chan error, 2)
	go func() {
		log.Info().Str("addr", cfg.GRPC.Addr).Msg("grpc health server listening")
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()
	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Str("environment", cfg.Environment).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown requested")
	case runErr = <-errCh:
		log.Error().Err(runErr).Msg("server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	grpcServer.GracefulStop()
	return runErr
}
