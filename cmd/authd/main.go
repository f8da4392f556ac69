// Command authd runs the authentication service: PostgreSQL for credentials,
// Redis for the session cache, HTTP on HOST:PORT.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	authcore "github.com/lancerhq/authcore"
	"github.com/lancerhq/authcore/httpapi"
	"github.com/lancerhq/authcore/postgres"
)

func main() {
	cfg, err := authcore.FromEnv()
	if err != nil {
		log.Fatal("authd: config: ", err)
	}
	if cfg.Database.URL == "" {
		log.Fatal("authd: DATABASE_URL required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal("authd: postgres: ", err)
	}
	defer pool.Close()

	store := postgres.NewStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatal("authd: schema: ", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Session.RedisAddr,
		Password: cfg.Session.RedisPassword,
		DB:       cfg.Session.RedisDB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("authd: redis: ", err)
	}

	core, err := authcore.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithCredentialStore(store).
		Build()
	if err != nil {
		log.Fatal("authd: core: ", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           httpapi.NewServer(core).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("authd: listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("authd: serve: ", err)
	}
	os.Exit(0)
}
