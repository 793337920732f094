package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lead-service/internal/config"
	"lead-service/internal/database"
	httpapi "lead-service/internal/http"
	"lead-service/internal/logger"
	"lead-service/internal/repository"
	"lead-service/internal/service"
	"lead-service/internal/store"
	"lead-service/internal/ws"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "lead-service")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	kv := store.NewRedisKV(redisClient)

	usersRepo := repository.NewPostgresUsersRepository(db)
	requirementsRepo := repository.NewPostgresRequirementsRepository(db)
	leadsRepo := repository.NewPostgresLeadsRepository(db)

	identityClient := service.NewIdentityClient(cfg.UserService.BaseURL, cfg.UserService.Timeout, log)
	chatClient := service.NewChatClient(cfg.ChatService.BaseURL, cfg.ChatService.Timeout, log)
	identitySync := service.NewIdentitySync(usersRepo, identityClient, log)

	registry := ws.NewRegistry(log)

	requirementService := service.NewRequirementService(requirementsRepo, identitySync, log)
	leadService := service.NewLeadService(leadsRepo, requirementsRepo, identityClient, identitySync, chatClient, registry, log)
	statsService := service.NewStatsService(leadsRepo, kv, log)

	exposeDetail := !cfg.IsProduction()
	router := httpapi.NewRouter(log)
	router.RegisterRequirementRoutes(httpapi.NewRequirementHandler(requirementService, log, exposeDetail))
	router.RegisterLeadRoutes(httpapi.NewLeadHandler(leadService, statsService, log, exposeDetail))
	router.RegisterHealthRoutes()
	router.Handle("/ws", registry.HandleWS)

	srv := service.NewServer("lead-service", cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
	case err := <-errCh:
		log.Error("server stopped", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	_ = redisClient.Close()
	_ = db.Close()
}
