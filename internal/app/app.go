package app

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/niksmo/finsearch/config"
	"github.com/niksmo/finsearch/internal/adapter"
	"github.com/niksmo/finsearch/internal/adapter/cache"
	"github.com/niksmo/finsearch/internal/adapter/httphandler"
	"github.com/niksmo/finsearch/internal/adapter/kafka"
	"github.com/niksmo/finsearch/internal/adapter/remoteconfig"
	"github.com/niksmo/finsearch/internal/adapter/searchapi"
	"github.com/niksmo/finsearch/internal/adapter/storage"
	"github.com/niksmo/finsearch/internal/core/port"
	"github.com/niksmo/finsearch/internal/core/service"
	"github.com/niksmo/finsearch/pkg/schema"
	"github.com/twmb/franz-go/pkg/sr"
)

type repositories struct {
	products      storage.ProductsRepository
	customers     storage.CustomersRepository
	productGroups storage.ProductGroupsRepository
}

type coreService struct {
	exporter     port.Exporter
	search       port.SearchGateway
	configReader port.ServiceConfigReader
}

type App struct {
	ctx           context.Context
	cfg           config.Config
	sqldb         storage.SQLDB
	repos         repositories
	configCache   port.ConfigCache
	sqliteCache   *cache.SQLiteCache
	itemsSerde    schema.Serde
	itemsProducer *kafka.ExportItemsProducer
	service       coreService
	httpServer    httphandler.HTTPServer
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initStorage()
	app.initConfigCache()
	if cfg.Broker.Enabled {
		app.initSerdes()
		app.initProducer()
	}
	app.initCoreService()
	app.initInboundAdapters()

	return app
}

func (app *App) initLogger() {
	var handler slog.Handler
	switch app.cfg.LogFormat {
	case config.LogFormatText:
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      app.cfg.LogLevel,
			TimeFormat: time.TimeOnly,
		})
	default:
		opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func (app *App) initStorage() {
	const op = "App.initStorage"

	db, err := storage.NewSQLDB(app.ctx, app.cfg.SQLDB)
	if err != nil {
		app.fallDown(op, err)
	}

	app.sqldb = db
	app.repos = repositories{
		products:      storage.NewProductsRepository(db),
		customers:     storage.NewCustomersRepository(db),
		productGroups: storage.NewProductGroupsRepository(db),
	}
}

func (app *App) initConfigCache() {
	const op = "App.initConfigCache"

	if app.cfg.Cache.Backend != config.CacheBackendSQLite {
		app.configCache = cache.NewMemoryCache()
		return
	}

	c, err := cache.NewSQLiteCache(app.ctx, app.cfg.Cache.SQLitePath)
	if err != nil {
		app.fallDown(op, err)
	}
	app.sqliteCache = c
	app.configCache = c
}

func (app *App) initSerdes() {
	const op = "App.initSerdes"

	srClient, err := sr.NewClient(sr.URLs(app.cfg.Broker.SchemaRegistryURLs...))
	if err != nil {
		app.fallDown(op, err)
	}

	subject := app.cfg.Broker.ExportItemsTopic + "-value"
	itemsSerde, err := schema.NewSerdeExportItemV1(
		app.ctx,
		schema.SubjectOpt(subject),
		schema.SchemaIdentifierOpt(schema.NewSchemaIdentifier(srClient)),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.itemsSerde = itemsSerde
}

func (app *App) initProducer() {
	const op = "App.initProducer"

	broker := app.cfg.Broker

	var tlsCfg *tls.Config
	if broker.TLS.Enabled() {
		var err error
		tlsCfg, err = adapter.MakeTLSConfig(broker.TLS.CA, broker.TLS.Cert, broker.TLS.Key)
		if err != nil {
			app.fallDown(op, err)
		}
	}

	p, err := kafka.NewExportItemsProducer(
		kafka.ProducerClientOpt(
			app.ctx, broker.SeedBrokers, broker.ExportItemsTopic, tlsCfg,
		),
		kafka.ProducerEncoderOpt(app.itemsSerde),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.itemsProducer = &p
}

func (app *App) initCoreService() {
	cfg := app.cfg

	remoteConfig := service.NewRemoteConfig(
		app.configCache,
		remoteconfig.NewClient(
			cfg.RemoteConfig.BaseURL,
			cfg.RemoteConfig.PathTemplate,
			cfg.RemoteConfig.Timeout,
		),
		service.RemoteConfigTTLOpt(cfg.RemoteConfig.TTL),
	)

	prices := service.NewPriceResolver(
		app.repos.customers,
		app.repos.customers,
		service.TierPriceCalculator{},
		service.AdvancedPricingMode(cfg.Export.AdvancedPricing),
	)

	builder := service.NewItemBuilder(prices, new(service.Hooks), service.BuilderConfig{
		CustomerGroups:         cfg.Export.CustomerGroups,
		CrossSellingCategories: cfg.Export.CrossSellingCategories,
	})

	var publisher port.ItemsPublisher
	if app.itemsProducer != nil {
		publisher = app.itemsProducer
	}

	exporter := service.NewExporter(
		app.repos.products,
		app.repos.productGroups,
		cache.NewProductGroupCache(cfg.Export.ProductGroupsTTL),
		builder,
		publisher,
		service.ExporterConfig{Workers: cfg.Export.Workers},
	)

	search := service.NewSearchService(
		remoteConfig,
		searchapi.NewClient(cfg.SearchAPI.BaseURL, cfg.SearchAPI.Timeout),
		app.repos.products,
		app.repos.products,
	)

	app.service = coreService{
		exporter:     exporter,
		search:       search,
		configReader: remoteConfig,
	}
}

func (app *App) initInboundAdapters() {
	mux := http.NewServeMux()
	httphandler.RegisterExport(mux, app.service.exporter)
	httphandler.RegisterSearch(mux, app.service.search)
	httphandler.RegisterServiceConfig(mux, app.service.configReader)

	app.httpServer = httphandler.NewHTTPServer(httphandler.ServerConfig{
		Addr:              app.cfg.HTTP.Addr,
		HandlerTimeout:    app.cfg.HTTP.HandlerTimeout,
		ReadHeaderTimeout: app.cfg.HTTP.ReadHeaderTimeout,
		IdleTimeout:       app.cfg.HTTP.IdleTimeout,
	}, mux)
}

func (app *App) Run(stopFn context.CancelFunc) {
	go app.httpServer.Run(stopFn)

	slog.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)
	if app.itemsProducer != nil {
		app.itemsProducer.Close()
	}
	if app.sqliteCache != nil {
		app.sqliteCache.Close()
	}
	app.sqldb.Close()

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
