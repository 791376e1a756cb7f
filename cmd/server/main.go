package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/credvault/credvault/internal/config"
	handlerhttp "github.com/credvault/credvault/internal/handler/http"
	"github.com/credvault/credvault/internal/logger"
	"github.com/credvault/credvault/internal/server"
	"github.com/credvault/credvault/internal/service"
	"github.com/credvault/credvault/internal/store"
	"github.com/credvault/credvault/internal/workers"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("credvault-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().
		Str("address", cfg.Server.HTTPAddress).
		Dur("pending_ttl", cfg.Storage.PendingLoginTTL).
		Dur("janitor_interval", cfg.Workers.JanitorInterval).
		Msg("received configs")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	storages, err := store.NewStorages(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}

	services, err := service.NewServices(storages, *cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating services")
	}

	handler := handlerhttp.NewHandler(services, log)

	srv, err := server.NewServer(handler, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	janitor := workers.NewJanitor(storages.PendingLogins, storages.DenyListRepository, cfg.Workers.JanitorInterval, log)
	workers.NewWorkers(janitor).Run(ctx)

	srv.RunServer()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
