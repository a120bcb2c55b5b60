package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/marketplace-api/internal/config"
	"github.com/iliyamo/marketplace-api/internal/database"
	"github.com/iliyamo/marketplace-api/internal/handler"
	"github.com/iliyamo/marketplace-api/internal/middleware"
	"github.com/iliyamo/marketplace-api/internal/queue"
	"github.com/iliyamo/marketplace-api/internal/repository"
	"github.com/iliyamo/marketplace-api/internal/router"
	"github.com/iliyamo/marketplace-api/internal/sale"
	"github.com/iliyamo/marketplace-api/internal/token"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	priv, err := token.LoadPrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		log.Fatalf("jwt private key: %v", err)
	}
	pub, err := token.LoadPublicKey(cfg.JWTPublicKey)
	if err != nil {
		log.Fatalf("jwt public key: %v", err)
	}

	users := repository.NewUserRepo(db)
	products := repository.NewProductRepo(db)
	sales := repository.NewSaleRepo(db)
	reports := repository.NewReportRepo(db)
	tokens := token.NewService(priv, repository.NewTokenRepo(db), cfg.AccessTTLMin, cfg.RefreshTTLDays)

	engine := sale.NewEngine(repository.NewSaleStore(db, products, sales))

	// Redis is optional; without it the cache and rate limiter become
	// pass-through middleware.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; response cache and rate limiting disabled")
	}

	// The consumer drains sale events into logs/sales.log and reconnects
	// on broker failures for the lifetime of the process.
	go func() {
		if err := queue.StartSalesConsumer(); err != nil {
			log.Printf("sales consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.Register(e, router.Deps{
		Auth:         handler.NewAuthHandler(cfg, users, tokens),
		Products:     handler.NewProductHandler(products),
		Sales:        handler.NewSaleHandler(engine, sales),
		Reports:      handler.NewReportHandler(reports),
		JWTPublicKey: pub,
		Cache:        middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
		RateLimit:    middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
