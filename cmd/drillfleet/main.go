package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/nurpe/drillfleet/internal/api"
	"github.com/nurpe/drillfleet/internal/auth"
	"github.com/nurpe/drillfleet/internal/cache"
	"github.com/nurpe/drillfleet/internal/config"
	"github.com/nurpe/drillfleet/internal/db"
	"github.com/nurpe/drillfleet/internal/excel"
	httphandler "github.com/nurpe/drillfleet/internal/http"
	"github.com/nurpe/drillfleet/internal/logger"
	"github.com/nurpe/drillfleet/internal/model"
	"github.com/nurpe/drillfleet/internal/pdf"
	"github.com/nurpe/drillfleet/internal/repository"
	"github.com/nurpe/drillfleet/internal/service"
	"github.com/nurpe/drillfleet/internal/tracking"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)
	ctx := context.Background()

	tokenStore := newTokenStore(cfg, log)
	store := newCache(ctx, cfg, log)

	nav := auth.NewRouter(auth.LoginRoute, log)
	session, err := auth.NewSession(ctx, tokenStore, nav, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to restore session")
	}
	client := api.NewClient(api.Options{
		BaseURL:      cfg.API.BaseURL,
		MediaBaseURL: cfg.API.MediaBaseURL,
		Timeout:      cfg.API.Timeout,
	}, session, log)
	session.Bind(client)

	fleet := tracking.NewFleet(client, session, cfg.Tracking.PollInterval, log)
	defer fleet.Close()

	session.OnLogout(func() {
		fleet.Reset()
		if err := store.Clear(context.Background()); err != nil {
			log.Warn().Err(err).Msg("failed to clear cache on logout")
		}
	})

	center := model.Coordinate{Lat: cfg.Tracking.DefaultCenterLat, Lng: cfg.Tracking.DefaultCenterLng}
	machines := service.NewMachineService(client, store, cfg.Tracking.MachinesRetries, cfg.Tracking.MachinesRetryDelay, log)
	history := service.NewHistoryService(client, store, center, log)
	shifts := service.NewShiftManager(client, store, log)
	fuel := service.NewFuelLedger(client, shifts, store, log)
	inventory := service.NewInventoryLedger(client, store, log)
	workforce := service.NewWorkforceService(client, store, log)
	reports := service.NewReportService(machines, history, shifts, fuel, workforce, excel.NewGenerator(), pdf.NewGenerator())

	if session.State() == auth.StateAuthenticated {
		if _, err := session.RefreshUser(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to load current user")
		}
		if list, err := machines.List(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to load machines")
		} else {
			fleet.SetMachines(list)
		}
	}

	handler := httphandler.NewHandler(httphandler.Services{
		Session:   session,
		Machines:  machines,
		History:   history,
		Shifts:    shifts,
		Fuel:      fuel,
		Inventory: inventory,
		Workforce: workforce,
		Reports:   reports,
		Fleet:     fleet,
	}, log)
	router := httphandler.NewRouter(handler, cfg.HTTP.CORSOrigins, cfg.Environment, log)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Str("api", cfg.API.BaseURL).Msg("starting drillfleet dashboard")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}

func newTokenStore(cfg *config.Config, log zerolog.Logger) auth.TokenStore {
	if cfg.Auth.TokenStore != config.TokenStoreDB {
		return auth.NewFileTokenStore(cfg.Auth.TokenFile)
	}
	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	return repository.NewTokenRepository(database)
}

func newCache(ctx context.Context, cfg *config.Config, log zerolog.Logger) cache.Store {
	if cfg.Cache.Backend != config.CacheRedis {
		return cache.NewMemoryStore(cfg.Cache.TTL)
	}
	store := cache.NewRedisStore(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB, cfg.Cache.TTL)
	if err := store.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to connect redis")
	}
	return store
}
