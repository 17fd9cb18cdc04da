package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restaurant_backend/internal/config"
	"restaurant_backend/internal/database"
	"restaurant_backend/internal/repositories"
	"restaurant_backend/internal/router"
	"restaurant_backend/internal/services"
	"restaurant_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize Logger
	utils.InitLogger(cfg.LogLevel, cfg.LogPretty)

	// Initialize Database
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := database.ApplyMigrations(cfg.MigrateURL(), cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	catalog, err := services.LoadStatusCatalog(startupCtx, repositories.NewStatusRepository(db))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load status catalog")
	}

	jwtManager, err := utils.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid JWT configuration")
	}

	svc := router.NewServices(router.Deps{
		DB:           db,
		Catalog:      catalog,
		SessionCache: sessionCache(startupCtx, cfg),
		JWT:          jwtManager,
		SessionTTL:   cfg.SessionTTL,
	})

	if _, err := svc.Kitchen.SyncDefaultStations(startupCtx); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply default kitchen stations")
	}
	cancelStartup()

	engine := gin.New()
	engine.Use(gin.Recovery())

	// Add GinLogger middleware for request logging
	engine.Use(utils.GinLogger())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Table-Token"}
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Setup all application routes
	router.Setup(engine, svc, jwtManager)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.LogInfo("Server starting", map[string]interface{}{"port": cfg.Port})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.LogInfo("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.LogError(err, "Server forced to shutdown")
	}
	utils.LogInfo("Server exited")
}

// sessionCache connects to Redis when configured; without it sessions are read from Postgres only.
func sessionCache(ctx context.Context, cfg *config.Config) repositories.SessionCache {
	if cfg.RedisAddr == "" {
		return repositories.NewNoopSessionCache()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		utils.LogError(err, "Redis unavailable, table sessions will not be cached")
		client.Close()
		return repositories.NewNoopSessionCache()
	}
	utils.LogInfo("Table session cache enabled", map[string]interface{}{"redis_addr": cfg.RedisAddr})
	return repositories.NewRedisSessionCache(client)
}
