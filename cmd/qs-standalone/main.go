package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	apicontract "github.com/tuanvumaihuynh/quickstore/api-contract"
	"github.com/tuanvumaihuynh/quickstore/internal/collection"
	"github.com/tuanvumaihuynh/quickstore/internal/config"
	"github.com/tuanvumaihuynh/quickstore/internal/event"
	"github.com/tuanvumaihuynh/quickstore/internal/http"
	"github.com/tuanvumaihuynh/quickstore/internal/http/swagger"
	"github.com/tuanvumaihuynh/quickstore/internal/log"
	"github.com/tuanvumaihuynh/quickstore/internal/relay"
	"github.com/tuanvumaihuynh/quickstore/internal/repository"
	"github.com/tuanvumaihuynh/quickstore/internal/service"
	"github.com/tuanvumaihuynh/quickstore/internal/storage/db"
	"github.com/tuanvumaihuynh/quickstore/internal/storage/mq"
	"github.com/tuanvumaihuynh/quickstore/internal/telemetry"
	"github.com/tuanvumaihuynh/quickstore/pkg/cmdutil"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running standalone application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log         config.Log
		Postgres    config.Postgres
		HTTP        config.HTTP
		Docs        config.Docs
		Collections config.Collections
		Relay       config.Relay
		Kafka       config.Kafka
		Otel        config.Otel
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	cleanupTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("error initializing tracer: %w", err)
	}
	defer func() {
		if err := cleanupTracer(ctx); err != nil {
			logger.ErrorContext(ctx, "error cleaning up tracer", slog.Any("error", err))
		}
	}()

	collections, err := collection.Open(ctx, cfg.Collections.File)
	if err != nil {
		return fmt.Errorf("error loading collections: %w", err)
	}

	specBytes, err := apicontract.BuildJSON(ctx, collections, cfg.HTTP.PublicURL)
	if err != nil {
		return fmt.Errorf("error building openapi spec: %w", err)
	}

	viewerCfg, err := swagger.NewConfiguration(cfg.Docs)
	if err != nil {
		return fmt.Errorf("error loading docs config: %w", err)
	}

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	dbClient := db.NewClient(pgxPool)

	kafkaProducer, err := mq.NewKafkaProducer(ctx, cfg.Kafka)
	if err != nil {
		return fmt.Errorf("error creating kafka producer: %w", err)
	}
	defer kafkaProducer.Close()

	kafkaConsumer, err := mq.NewKafkaConsumer(ctx, cfg.Kafka, logger)
	if err != nil {
		return fmt.Errorf("error creating kafka consumer: %w", err)
	}
	defer kafkaConsumer.Close()

	documentRepository := repository.NewDocumentRepository(dbClient)
	outboxMsgRepository := repository.NewOutboxMsgRepository(dbClient)

	documentService := service.NewDocumentService(dbClient, collections, documentRepository, outboxMsgRepository)

	docsRegistry := swagger.Default()
	docs := http.Docs{
		Initializer: swagger.NewInitializer(viewerCfg, swagger.NewViewerFactory(cfg.Docs.AssetsURL), docsRegistry, logger),
		Registry:    docsRegistry,
		Spec:        specBytes,
	}

	interruptChan := cmdutil.InterruptChan()
	var wg sync.WaitGroup

	wg.Go(func() {
		svc := event.New(logger, kafkaConsumer)
		cleanup, err := svc.Run(ctx)
		if err != nil {
			panic(fmt.Errorf("error running event service: %w", err))
		}
		logger.InfoContext(ctx, "event service started")

		<-interruptChan

		logger.InfoContext(ctx, "event service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "event service is stopped")
	})

	wg.Go(func() {
		svc := http.New(cfg.HTTP, logger, dbClient, collections, documentService, docs)
		cleanup, err := svc.Run(ctx)
		if err != nil {
			panic(fmt.Errorf("error running http service: %w", err))
		}

		logger.InfoContext(ctx, "http service started", slog.String("address", svc.Addr().String()))

		<-interruptChan

		logger.InfoContext(ctx, "http service is shutting down")
		if err := cleanup(ctx); err != nil {
			logger.ErrorContext(ctx, "error shutting down http service", slog.Any("error", err))
		}

		logger.InfoContext(ctx, "http service is stopped")
	})

	wg.Go(func() {
		svc := relay.NewService(cfg.Relay, logger, dbClient, outboxMsgRepository, kafkaProducer)
		cleanup := svc.Run(ctx)
		logger.InfoContext(ctx, "relay service started")

		<-interruptChan

		logger.InfoContext(ctx, "relay service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "relay service is stopped")
	})

	wg.Wait()

	return nil
}
