// Package main runs the collection REST API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ramonehamilton/mtg-collector/internal/api"
	"github.com/ramonehamilton/mtg-collector/internal/app"
	"github.com/ramonehamilton/mtg-collector/internal/config"
	"github.com/ramonehamilton/mtg-collector/internal/logging"
	"github.com/ramonehamilton/mtg-collector/internal/version"
)

const serviceName = "collector-api"

var (
	configPath  = flag.String("config", "", "Config file path (default: ~/.mtg-collector/config.toml)")
	port        = flag.Int("port", 0, "API server port (overrides config)")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String(serviceName))
		return
	}

	log := logging.New(logging.Options{ServiceName: serviceName})
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, relying on environment")
	}

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	log = logging.New(logging.Options{
		ServiceName: serviceName,
		Level:       logging.ParseLevel(cfg.Log.Level),
		Format:      cfg.Log.Format,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	ctx := context.Background()
	a, err := app.New(ctx, cfg, app.Options{Logger: log, Registerer: reg})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize")
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error().Err(err).Msg("error closing store")
		}
	}()

	server := api.NewServer(&api.Config{
		Port:    cfg.Server.Port,
		Timeout: cfg.ServerTimeout(),
	}, api.Dependencies{
		Service:  a.Service,
		Catalog:  a.Catalog,
		Gatherer: reg,
		Logger:   log,
	})

	if err := server.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start API server")
	}
	log.Info().
		Str("version", version.Version).
		Str("storage", cfg.Storage.Driver).
		Msgf("API server running at http://localhost:%d", server.Port())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("API server stopped")
}
