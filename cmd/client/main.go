package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-warden-sync/internal/adapter"
	"github.com/MKhiriev/go-warden-sync/internal/client"
	"github.com/MKhiriev/go-warden-sync/internal/config"
	"github.com/MKhiriev/go-warden-sync/internal/crypto"
	"github.com/MKhiriev/go-warden-sync/internal/logger"
	"github.com/MKhiriev/go-warden-sync/internal/service"
	"github.com/MKhiriev/go-warden-sync/internal/store"
	"github.com/MKhiriev/go-warden-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	buildInfo := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	fmt.Println(buildInfo)

	if err := run(buildInfo); err != nil {
		fmt.Fprintf(os.Stderr, "warden-sync: %v\n", err)
		os.Exit(1)
	}
}

func run(buildInfo models.AppBuildInfo) error {
	cfg, err := config.GetClientConfig(os.Args[1:])
	if err != nil {
		return fmt.Errorf("error getting configs: %w", err)
	}

	log := logger.NewClientLogger("warden-sync", cfg.Log.FilePath)
	defer log.Close()
	log.Info().Str("version", buildInfo.BuildVersion()).Str("commit", buildInfo.BuildCommit()).Msg("client starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	keyChain := crypto.NewKeyChainService()
	storages, err := store.NewStorages(ctx, cfg.Storage, keyChain, log)
	if err != nil {
		return fmt.Errorf("create local storage: %w", err)
	}
	defer storages.Close()

	adapters := adapter.NewHTTPAdapterFactory(cfg.Adapter, log)

	services, err := service.NewServices(storages, adapters, cfg.Sync, keyChain, log)
	if err != nil {
		return fmt.Errorf("create client services: %w", err)
	}

	app, err := client.NewApp(services, cfg, client.NewTerminalPrompter(os.Stdin, os.Stderr), log)
	if err != nil {
		return fmt.Errorf("init client app: %w", err)
	}

	if err = app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Err(err).Msg("client run error")
		return err
	}
	log.Info().Msg("client stopped")
	return nil
}
