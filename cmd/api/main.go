package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/petpad-xyz/launchpad/internal/adapter"
	"github.com/petpad-xyz/launchpad/internal/api/server"
	"github.com/petpad-xyz/launchpad/internal/assets"
	"github.com/petpad-xyz/launchpad/internal/config"
	"github.com/petpad-xyz/launchpad/internal/ledger"
	"github.com/petpad-xyz/launchpad/internal/logger"
	"github.com/petpad-xyz/launchpad/internal/providers/clanker"
	"github.com/petpad-xyz/launchpad/internal/providers/moltbook"
	"github.com/petpad-xyz/launchpad/internal/store"
	"github.com/petpad-xyz/launchpad/internal/sweeper"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags: map[string]string{
			"service": "api-server",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting PetPad launchpad API")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Migrate schema and configure connection pool
	if err := store.Migrate(db); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.Fatal("Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database")

	// Initialize store
	dataStore := store.NewPGStore(db)

	clock := adapter.NewClock()

	// Connect to the Base RPC endpoint
	ethClient, err := adapter.NewEthClientDialer().Dial(ctx, cfg.Deployer.RPCURL)
	if err != nil {
		logger.Fatal("Failed to connect to RPC endpoint", zap.Error(err), zap.String("rpc_url", cfg.Deployer.RPCURL))
	}
	defer ethClient.Close()

	// Create the token deployer; an empty private key yields a disabled
	// deployer and the service reports it through /health
	deployer, err := clanker.NewDeployer(ethClient, clock, clanker.Config{
		PrivateKey:     cfg.Deployer.PrivateKey,
		FactoryAddress: cfg.Deployer.FactoryAddress,
		PlatformWallet: cfg.Deployer.PlatformWallet,
		ChainID:        cfg.Deployer.ChainID,
		DeployTimeout:  cfg.Deployer.DeployTimeout,
	})
	if err != nil {
		logger.Fatal("Failed to create deployer", zap.Error(err))
	}
	if cfg.Deployer.PrivateKey == "" {
		logger.WarnCtx(ctx, "Deployer wallet not configured, launches will fail until it is")
	}

	// Create the asset store for generated pet images
	assetStore, err := newAssetStore(cfg.Assets)
	if err != nil {
		logger.Fatal("Failed to create asset store", zap.Error(err))
	}

	// Create the post fetcher and launch ledger
	posts := moltbook.NewClient(cfg.Moltbook.APIURL, cfg.Moltbook.Timeout)
	launchLedger := ledger.New(dataStore, posts, deployer, assetStore, clock, cfg.Deployer.ChainID, cfg.Launch.RateLimitHours)

	// Start the stale-pending sweeper in the background
	staleSweeper := sweeper.NewStalePendingSweeper(&sweeper.StalePendingSweeperConfig{
		Interval:   cfg.Sweeper.Interval,
		StaleAfter: cfg.Sweeper.StaleAfter,
	}, dataStore, clock)
	go func() {
		if err := staleSweeper.Start(ctx); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("component", staleSweeper.Name()))
		}
	}()

	// Create server config
	serverConfig := server.Config{
		Debug:        cfg.Debug,
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}
	if cfg.Assets.Provider == "filesystem" {
		serverConfig.PublicDir = cfg.Assets.PublicDir
	}

	// Create and start server
	srv := server.New(serverConfig, dataStore, launchLedger, deployer)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := staleSweeper.Stop(shutdownCtx); err != nil {
		logger.Error(err, zap.String("component", staleSweeper.Name()))
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	// Use non-context logger for final message since original ctx is canceled
	logger.Info("API server stopped")
}

// newAssetStore builds the configured asset backend
func newAssetStore(cfg config.AssetsConfig) (assets.Store, error) {
	switch cfg.Provider {
	case "cloudflare":
		return assets.NewCloudflareStore(cfg.CloudflareAccountID, cfg.CloudflareAPIToken)
	default:
		return assets.NewFilesystemStore(cfg.PublicDir, cfg.BaseURL), nil
	}
}
