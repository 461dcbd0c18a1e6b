package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/cwrk-planet/study-room/config"
	"github.com/cwrk-planet/study-room/internal/memstore"
	"github.com/cwrk-planet/study-room/internal/postgres"
	httpserver "github.com/cwrk-planet/study-room/internal/server/http"
	"github.com/cwrk-planet/study-room/internal/service"
	httpx "github.com/cwrk-planet/study-room/internal/transport/http"
	httpmw "github.com/cwrk-planet/study-room/internal/transport/http/middleware"
	"github.com/cwrk-planet/study-room/internal/transport/ws"
	"github.com/cwrk-planet/study-room/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger.Init(logger.Config{
		Env:       logger.ParseEnv(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting study-room", "env", cfg.Logging.Env, "version", cfg.Logging.Version)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- storage ---
	var (
		roomRepo service.RoomRepository
		health   func(context.Context) error
	)
	if cfg.Postgres.DSN != "" {
		db, err := postgres.New(ctx, postgres.Config{
			DSN:             cfg.Postgres.DSN,
			MaxConns:        cfg.Postgres.MaxConns,
			ApplicationName: cfg.Logging.Service,
		})
		if err != nil {
			return err
		}
		defer db.Close()
		roomRepo = postgres.NewRoomRepository(db.Pool)
		health = db.Ping
		slog.Info("storage: postgres")
	} else {
		roomRepo = memstore.NewRoomRepository()
		slog.Warn("storage: in-memory, rooms are lost on restart")
	}

	// --- services ---
	roomSvc := service.NewRoomService(roomRepo)
	hub := ws.NewHub()
	guests := httpmw.NewGuestSessions(
		[]byte(cfg.Session.HashKey), []byte(cfg.Session.BlockKey),
		cfg.Session.MaxAge, cfg.Session.Secure,
	)

	// --- metrics ---
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := httpmw.NewMetrics(reg)

	// --- HTTP ---
	router := httpx.NewRouter(httpx.Deps{
		Shell:          httpx.NewShell(roomSvc, hub, metrics),
		Handler:        httpx.NewHandler(roomSvc, hub),
		WS:             ws.NewServer(hub, roomSvc, httpmw.GuestFromRequest).HandleWS,
		Guests:         guests,
		Metrics:        metrics,
		Gatherer:       reg,
		Health:         health,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	srv := httpserver.New(httpserver.Config{
		Addr:         cfg.HTTP.Addr,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}, router)
	srv.OnShutdown(hub.CloseAll)

	slog.Info("http listen", "addr", cfg.HTTP.Addr)
	if err := srv.Run(ctx); err != nil {
		slog.Error("server stopped with error", "err", err)
		return err
	}
	slog.Info("stopped")
	return nil
}
