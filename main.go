package main

import (
	"context"
	"errors"
	"log"
	"net/http"

	"assetsync/src/api"
	handlers "assetsync/src/api/handlers"
	"assetsync/src/clients/nibo"
	"assetsync/src/config"
	"assetsync/src/database"
	"assetsync/src/repositories"
	"assetsync/src/scheduler"
	"assetsync/src/services"
	"assetsync/src/utils"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Local development keeps credentials in .env; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("./settings")
	if err != nil {
		log.Println(err, "Error while loading config")
		return
	}

	errC, err := run(cfg)
	if err != nil {
		log.Println(err, "Couldn't run")
		return
	}

	if err := <-errC; err != nil {
		log.Println(err, "Error while running")
	}
}

func run(cfg *config.Config) (<-chan error, error) {
	errC := make(chan error, 1)

	logLevel, err := logrus.ParseLevel(cfg.Service.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger := utils.NewLogger(logLevel, false, "")

	pool, err := database.SetupDB(cfg)
	if err != nil {
		return nil, err
	}

	companyRepo := repositories.NewCompanyRepository(pool)
	assetRepo := repositories.NewAssetRepository(pool)
	entryRepo := repositories.NewLedgerEntryRepository(pool)
	linkRepo := repositories.NewAssetLedgerLinkRepository(pool)
	benchmarkRepo := repositories.NewBenchmarkRateRepository(pool)
	projectionRepo := repositories.NewProjectionRepository(pool)
	txManager := repositories.NewTxManager(pool)

	client := nibo.NewClient(cfg)
	resolver := services.NewAssetResolver(assetRepo, txManager)
	projectionService := services.NewProjectionService(assetRepo, entryRepo, benchmarkRepo, projectionRepo, txManager)
	syncService := services.NewSyncService(companyRepo, entryRepo, linkRepo, assetRepo, txManager, client, resolver, projectionService)

	if cfg.Service.RefreshCron != "" {
		task, err := scheduler.NewScheduledTask(cfg.Service.RefreshCron, func() {
			refreshAllCompanies(logger, companyRepo, syncService)
		})
		if err != nil {
			return nil, err
		}
		defer func() {
			if err != nil {
				task.Cancel()
			}
		}()
	}

	handler := handlers.NewHandler(syncService, benchmarkRepo, logger)
	server := api.NewServer(handler)
	httpServer := api.NewHTTPServer(server, cfg.Service.Port)

	go func() {
		logger.Infof("Starting server on port %s", cfg.Service.Port)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("An error raised while setting up server")
			errC <- err
		}
	}()
	return errC, nil
}

// refreshAllCompanies re-syncs every company holding a stored API token. One
// failing company never blocks the rest.
func refreshAllCompanies(logger *logrus.Logger, companyRepo repositories.CompanyRepository, syncService services.SyncServiceI) {
	ctx := utils.WithLogger(context.Background(), logger)

	companies, err := companyRepo.GetAllWithToken(ctx)
	if err != nil {
		logger.WithError(err).Error("scheduled refresh: listing companies failed")
		return
	}

	for _, company := range companies {
		result, err := syncService.RefreshCompany(ctx, company.UserID, company.ID)
		if err != nil {
			logger.WithError(err).Warnf("scheduled refresh failed for company %d", company.ID)
			continue
		}
		logger.Infof("scheduled refresh for company %d: %d new assets, %d new transactions",
			company.ID, result.NewAssets, result.NewTransactions)
	}
}
