package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"eventhub/config"
	"eventhub/db"
	"eventhub/logger"
	"eventhub/middlewares"
	"eventhub/models"
	"eventhub/routes"
	"eventhub/utils"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logrus.WithError(err).Fatal("could not load configuration")
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Postgres
	sqldb, err := db.Open(ctx, cfg.Database.URL, db.PoolOptions{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		log.WithError(err).Fatal("postgres unavailable")
	}
	defer sqldb.Close()

	if err := db.Migrate(sqldb, log); err != nil {
		log.WithError(err).Fatal("could not migrate database")
	}

	// Redis backs the quotas only; the API keeps working without it.
	rdb := connectRedis(ctx, cfg.Redis, log)
	if rdb != nil {
		defer rdb.Close()
	}

	users := models.NewSQLUserRepository(sqldb)
	if err := bootstrapAdmin(ctx, users, cfg.Bootstrap, log); err != nil {
		log.WithError(err).Fatal("could not create bootstrap admin")
	}

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	server := gin.New()
	server.Use(middlewares.Recovery(log), middlewares.RequestLogger(log), cors.New(corsConfig(cfg.HTTP.CORSOrigins)))

	routes.RegisterRoutes(ctx, server, routes.Deps{
		Users:         users,
		Events:        models.NewSQLEventRepository(sqldb),
		Participants:  models.NewSQLParticipantRepository(sqldb),
		Registrations: models.NewSQLRegistrationRepository(sqldb),
		Dashboard:     models.NewSQLDashboardRepository(sqldb),
		Tokens:        utils.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Redis:         rdb,
		Log:           log,
		Limits:        cfg.Limits,
		ExposeErrors:  !cfg.Production(),
		Ping:          sqldb.PingContext,
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("addr", cfg.HTTP.Addr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server stopped")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

func connectRedis(ctx context.Context, cfg config.RedisConfig, log logrus.FieldLogger) *redis.Client {
	if cfg.Addr == "" {
		log.Warn("redis not configured, quotas disabled")
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.WithError(err).Warn("redis unavailable, quotas disabled")
		_ = rdb.Close()
		return nil
	}
	return rdb
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"X-Quota-Used", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	return c
}

// bootstrapAdmin creates the first admin when the users table is empty and
// credentials are configured.
func bootstrapAdmin(ctx context.Context, users models.UserRepository, cfg config.BootstrapConfig, log logrus.FieldLogger) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}
	n, err := users.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	admin := models.User{
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		Role:     models.RoleAdmin,
		FullName: cfg.AdminName,
	}
	if err := users.Create(ctx, &admin); err != nil {
		return err
	}
	log.WithField("email", admin.Email).Info("bootstrap admin created")
	return nil
}
