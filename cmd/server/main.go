package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/menu-factory/internal/config"
	"github.com/iliyamo/menu-factory/internal/events"
	"github.com/iliyamo/menu-factory/internal/handler"
	"github.com/iliyamo/menu-factory/internal/kv"
	"github.com/iliyamo/menu-factory/internal/middleware"
	"github.com/iliyamo/menu-factory/internal/oracle"
	"github.com/iliyamo/menu-factory/internal/queue"
	"github.com/iliyamo/menu-factory/internal/repository"
	"github.com/iliyamo/menu-factory/internal/router"
	"github.com/iliyamo/menu-factory/internal/service"
)

func main() {
	cfg := config.Load() // Load environment config
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis is optional: nil disables the cache and the limiter.
	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Printf("redis unreachable; cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	store, closeStore := kv.Open(ctx, cfg, rdb)
	defer closeStore()

	var analyzer oracle.Analyzer = oracle.Disabled{}
	if llm, err := oracle.New(cfg); err == nil {
		analyzer = llm
	} else {
		log.Printf("oracle disabled: %v", err)
	}

	hub := events.NewHub(32)
	pub, closePub := service.PublisherFromConfig(cfg, hub)
	defer closePub()

	svc := service.NewMenuService(
		repository.NewRegistry(store),
		repository.NewDishStore(store),
		repository.NewPriceStore(store, cfg.DefaultMenuPrice),
		analyzer,
		pub,
	)

	// Changes made by other processes reach local subscribers through the relay.
	if cfg.EventsBackend == config.EventsAMQP {
		go func() {
			sink := func(ev queue.MenuChangedEvent) { _ = hub.Publish(ctx, ev) }
			if err := queue.StartRelay(ctx, cfg.RabbitURL, queue.ProcessOrigin, sink); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("menu-relay stopped: %v", err)
			}
		}()
	}

	cacheCfg := config.LoadCacheConfig()
	if rdb != nil && cacheCfg.Enabled {
		changes, cancel := hub.Subscribe()
		defer cancel()
		go middleware.PurgeOnChange(ctx, rdb, cacheCfg.Prefix, changes)
	}

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	h := handler.NewMenuHandler(svc)
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	router.RegisterRoutes(e) // Register application routes
	router.RegisterPublic(e, h, middleware.NewRedisCache(cacheCfg, rdb))
	router.RegisterEvents(e, handler.NewEventsHandler(hub))
	router.RegisterGestion(e, h, limiter)
	router.RegisterFactory(e, h, limiter)

	addr := ":" + cfg.Port // Address string with port
	log.Printf("listening on %s (env=%s store=%s events=%s)", addr, cfg.Env, cfg.StoreBackend, cfg.EventsBackend)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) { // Start HTTP server
			log.Fatal(err) // Log and exit if server fails
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
