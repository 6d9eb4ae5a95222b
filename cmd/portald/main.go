package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pantryos/internal/cache"
	"pantryos/internal/config"
	"pantryos/internal/infra"
	"pantryos/internal/model"
	"pantryos/internal/notify"
	"pantryos/internal/repository"
	"pantryos/internal/service"
	"pantryos/internal/worker"
)

// portald keeps the operations core warm: it loads every org's snapshots,
// listens for refetch fanout from other instances, and periodically sweeps
// for drift. Embedding applications construct the same stack in-process;
// the daemon is the headless variant.
func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL, cfg.RedisPoolSize)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	itemRepo := repository.NewItemRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)

	itemCache := cache.NewStore[model.InventoryItem]()
	supplierCache := cache.NewStore[model.Supplier]()

	dispatcher := worker.NewDispatcher(rdb)
	notifier := notify.LogNotifier{}

	items := service.NewItemService(itemRepo, itemCache, notifier, dispatcher, cfg.MutationTimeout())
	suppliers := service.NewSupplierService(supplierRepo, itemRepo, supplierCache, itemCache, notifier, dispatcher, cfg.MutationTimeout())

	// Warm every org's snapshots before accepting refetch traffic.
	orgs, err := itemRepo.ListOrgs(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to list orgs")
	}
	for _, orgID := range orgs {
		if err := items.Refresh(ctx, orgID); err != nil {
			log.Error().Err(err).Str("org_id", orgID).Msg("warm-up: inventory refresh failed")
		}
		if err := suppliers.Refresh(ctx, orgID); err != nil {
			log.Error().Err(err).Str("org_id", orgID).Msg("warm-up: supplier refresh failed")
		}
	}
	log.Info().Int("orgs", len(orgs)).Msg("caches warmed")

	handlers := worker.Handlers{Items: items, Suppliers: suppliers}
	if err := worker.StartPool(ctx, rdb, handlers, cfg.WorkerPoolSize); err != nil {
		log.Fatal().Err(err).Msg("failed to start refetch pool")
	}

	warmKeys := func() []cache.Key {
		return append(itemCache.Keys(), supplierCache.Keys()...)
	}
	worker.StartSweep(ctx, cfg.SweepInterval(), warmKeys, dispatcher)

	log.Info().Str("env", cfg.Env).Msg("portald running")

	// Graceful shutdown on SIGINT / SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down…")
	cancel()
	log.Info().Msg("portald exited")
}
