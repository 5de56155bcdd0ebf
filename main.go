package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"flagrooms/cleanup"
	"flagrooms/config"
	"flagrooms/countries"
	"flagrooms/game"
	"flagrooms/handlers"
	"flagrooms/history"
	"flagrooms/middleware"
	"flagrooms/ratelimit"
	"flagrooms/realtime"
	"flagrooms/rooms"
	"flagrooms/routes"
	"flagrooms/session"
	"flagrooms/users"
)

func main() {
	cfg := config.Load()

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	historyStore := history.NewStore(db)
	if err := historyStore.Migrate(); err != nil {
		log.Fatal("Failed to migrate history tables:", err)
	}

	redisClient := config.InitRedis(cfg)
	limiter := ratelimit.New(redisClient, ratelimit.DefaultRules())

	roomStore := rooms.NewStore()
	userStore := users.NewStore()
	provider := countries.NewProvider()

	registry := realtime.NewRegistry()
	broadcaster := realtime.NewBroadcaster(registry, func(roomID string) []string {
		snap, ok := roomStore.Snapshot(roomID)
		if !ok {
			return nil
		}
		ids := make([]string, 0, len(snap.Members))
		for _, m := range snap.Members {
			ids = append(ids, m.UserID)
		}
		return ids
	})

	heartbeatCfg := realtime.HeartbeatConfig{
		Interval:  cfg.HeartbeatInterval,
		Timeout:   cfg.HeartbeatTimeout,
		MaxMissed: cfg.HeartbeatMaxMissed,
	}

	var router *session.Router
	heartbeat := realtime.NewMonitor(heartbeatCfg,
		func(userID string) {
			// signalLoss runs on the heartbeat task's own goroutine, which
			// holds no room lock, so calling Disconnect directly is safe.
			router.Disconnect(userID)
		},
		func(userID string) { userStore.Touch(userID) },
	)

	engine := game.NewEngine(roomStore, broadcaster, provider, historyStore)
	router = session.NewRouter(roomStore, userStore, registry, broadcaster, heartbeat, engine, limiter)

	cleanupSvc := cleanup.NewService(cleanup.Config{
		Interval:            cfg.CleanupInterval,
		InactiveUserTimeout: cfg.InactiveUserTimeout,
		EmptyRoomTimeout:    cfg.EmptyRoomTimeout,
		MaxRoomLifetime:     cfg.MaxRoomLifetime,
		TTLWarningWindow:    5 * time.Minute,
	}, roomStore, userStore, broadcaster, engine, router)
	cleanupSvc.Start()

	sessionAuth := middleware.NewSessionAuth(cfg.JWTSecret)
	ipGuard := middleware.NewIPGuard(cfg.MaxConnsPerIP)

	statusHandler := handlers.NewStatusHandler(roomStore, userStore)
	roomHandler := handlers.NewRoomHandler(roomStore)
	adminHandler := handlers.NewAdminHandler(roomStore, userStore)
	sessionHandler := handlers.NewSessionHandler(sessionAuth)
	wsHandler := routes.NewWSHandler(sessionAuth, ipGuard, router, cfg.AllowedOrigins)

	gin.SetMode(gin.ReleaseMode)
	ginEngine := gin.New()
	ginEngine.Use(gin.Recovery())

	routes.Setup(ginEngine, routes.Dependencies{
		Status:       statusHandler,
		Room:         roomHandler,
		Admin:        adminHandler,
		Session:      sessionHandler,
		WS:           wsHandler,
		CORSOrigins:  cfg.AllowedOrigins,
		AdminKeyHash: cfg.AdminKeyHash,
	})

	srv := &http.Server{
		Addr:    cfg.BindAddress + ":" + cfg.Port,
		Handler: ginEngine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Server starting on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	cleanupSvc.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
}
