package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/cocodedk/publix/client"
	"github.com/cocodedk/publix/internal/config"
	"github.com/cocodedk/publix/internal/crypto"
	"github.com/cocodedk/publix/internal/infrastructure/database"
	"github.com/cocodedk/publix/internal/infrastructure/gateway"
	"github.com/cocodedk/publix/internal/infrastructure/repository"
	"github.com/cocodedk/publix/internal/present/rest"
	"github.com/cocodedk/publix/internal/service"
	"github.com/cocodedk/publix/internal/usecase"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: publix <serve|ingest|seed-tlds> [options]")
	fmt.Fprintln(os.Stderr, "  serve      run the search API server")
	fmt.Fprintln(os.Stderr, "  ingest     run one ingestion campaign (-term)")
	fmt.Fprintln(os.Stderr, "  seed-tlds  refresh the TLD registry and exit")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(os.Args[2:])
	case "ingest":
		err = runIngest(os.Args[2:])
	case "seed-tlds":
		err = runSeedTLDs(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		slog.Error("command failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// app holds everything the subcommands wire up from one config file.
type app struct {
	config config.Config
	ingest *usecase.IngestUsecase
	search *usecase.SearchUsecase
	record *usecase.RecordUsecase
	signal *service.SignalService
}

func buildApp(conf config.Config) (*app, error) {
	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		return nil, err
	}
	if err := database.MigratePostgres(db); err != nil {
		return nil, err
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, "", conf.Server.RedisDB)

	encryptor, err := crypto.NewEncryptor(conf.Crypto.Passphrase, conf.Crypto.KDFSalt)
	if err != nil {
		return nil, err
	}

	providerClient := client.New(conf.Provider.Endpoint, conf.Provider.APIKey)
	provider := gateway.NewProviderGateway(providerClient)

	recordRepo := repository.NewRecordRepository(db)
	registryRepo := repository.NewRegistryRepository(db)
	credentialRepo := repository.NewCredentialRepository(db)

	signalService := service.NewSignalService(rdb)

	ingestUC := usecase.NewIngestUsecase(
		provider, recordRepo, registryRepo, credentialRepo,
		encryptor, signalService, conf.Crypto.IndexSalt,
		usecase.IngestOptions{
			MaxResults:    conf.Provider.MaxResults,
			Buckets:       conf.Provider.Buckets,
			SearchDelay:   time.Duration(conf.Provider.SearchDelaySeconds) * time.Second,
			FetchDelay:    time.Duration(conf.Provider.FetchDelaySeconds) * time.Second,
			MaxLineLength: conf.Provider.MaxLineLength,
		},
	)
	searchUC := usecase.NewSearchUsecase(credentialRepo, registryRepo, encryptor, conf.Crypto.IndexSalt)
	recordUC := usecase.NewRecordUsecase(recordRepo)

	return &app{
		config: conf,
		ingest: ingestUC,
		search: searchUC,
		record: recordUC,
		signal: signalService,
	}, nil
}

func runServe(args []string) error {
	flags := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := flags.String("c", "config.yaml", "path to config file")
	flags.Parse(args)

	conf, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	app, err := buildApp(conf)
	if err != nil {
		return err
	}

	e := echo.New()
	e.HidePort = true
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	if app.config.Server.EnableTrace {
		cleanup, err := setupTraceProvider(app.config.Server.TraceEndpoint)
		if err != nil {
			return err
		}
		defer cleanup()

		skipper := otelecho.WithSkipper(func(c echo.Context) bool {
			return c.Path() == "/healthz"
		})
		e.Use(otelecho.Middleware("publix", skipper))
	}

	handler := rest.NewHandler(app.search, app.record, app.signal)
	handler.RegisterRoutes(e)

	slog.Info("starting server", slog.String("listen", app.config.Server.Listen))
	return e.Start(app.config.Server.Listen)
}

func runIngest(args []string) error {
	flags := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := flags.String("c", "config.yaml", "path to config file")
	term := flags.String("term", "", "search term to ingest")
	maxResults := flags.Int("max", 0, "override provider result cap")
	flags.Parse(args)

	if *term == "" {
		flags.Usage()
		return fmt.Errorf("-term is required")
	}

	conf, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *maxResults > 0 {
		conf.Provider.MaxResults = *maxResults
	}
	app, err := buildApp(conf)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := app.ingest.Run(ctx, *term)
	if err != nil {
		return err
	}

	out, _ := json.MarshalIndent(report, "", "  ")
	fmt.Println(string(out))
	return nil
}

func runSeedTLDs(args []string) error {
	flags := flag.NewFlagSet("seed-tlds", flag.ExitOnError)
	configPath := flags.String("c", "config.yaml", "path to config file")
	flags.Parse(args)

	conf, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	app, err := buildApp(conf)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	n, err := app.ingest.SeedTLDRegistry(ctx)
	if err != nil {
		return err
	}

	slog.Info("TLD registry seeded", slog.Int("count", n))
	return nil
}

func setupTraceProvider(endpoint string) (func(), error) {
	ctx := context.Background()

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	resource := sdkresource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String("publix"),
	)

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown trace provider", slog.String("error", err.Error()))
		}
	}
	return cleanup, nil
}
