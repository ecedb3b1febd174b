package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type AppProvider interface {
	Run() error
	Serve() func() error
	Stop(context.Context, context.Context) func() error
}

type App struct {
	logger         *zap.Logger
	config         *Config
	clock          TickerClocker
	server         *http.Server
	limiter        *ClientsLimiter
	closers        []func() error
	queueConsumers []func(context.Context) error
}

// NewApp provides an instance of App serving the catalog api on top of the
// configured storage driver. With the redis driver and the mirror enabled,
// every change is also replayed into the bolt database.
func NewApp(config *Config, logger *zap.Logger, clock TickerClocker) (AppProvider, error) {
	var storage DocumentStorage
	var queue Queuer
	var closers []func() error
	var consumers []func(context.Context) error

	closeAll := func() {
		for _, c := range closers {
			_ = c()
		}
	}

	switch config.Storage.Driver {
	case RedisDriver:
		redisClient, err := GetRedisClient(config)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis server: %s", err)
		}
		closers = append(closers, redisClient.Close)
		storage = NewRedisDocumentStorage(logger, redisClient)

		if config.Storage.Mirror {
			boltDBClient, err := GetBoltDBClient(config)
			if err != nil {
				closeAll()
				return nil, fmt.Errorf("failed to connect to boltDB server: %s", err)
			}
			closers = append(closers, boltDBClient.Close)
			queue = NewRedisQueue(redisClient)
			boltDBConsumer := NewBoltDBConsumer(logger, queue, NewBoltDocumentStorage(logger, boltDBClient))
			consumers = append(consumers, func(ctx context.Context) error {
				return boltDBConsumer.Consume(ctx, CreateQueue, UpdateQueue, DeleteQueue)
			})
		}

	case BoltDriver:
		boltDBClient, err := GetBoltDBClient(config)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to boltDB server: %s", err)
		}
		closers = append(closers, boltDBClient.Close)
		storage = NewBoltDocumentStorage(logger, boltDBClient)

	case PostgresDriver:
		pool, err := GetPostgresPool(context.Background(), config)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres server: %s", err)
		}
		closers = append(closers, func() error {
			pool.Close()
			return nil
		})
		storage = NewPostgresDocumentStorage(logger, pool)

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", config.Storage.Driver)
	}

	catalog := NewCatalogServices(logger, storage, queue)
	apiService := NewAPIHandler(
		logger,
		config,
		&Statistics{
			version:   config.GitTag,
			container: IsAppRunningInDocker(),
			started:   clock.Now(),
			runtime:   runtime.Version(),
			platform:  runtime.GOOS + "/" + runtime.GOARCH,
		},
		clock,
		NewIDsHandler(),
		catalog,
	)

	// Use git commit in case the tag is not set.
	if config.GitTag == "" {
		apiService.stats.version = config.GitCommit
	}

	// Build the map of middlewares stacks.
	middlewaresPublic, middlewaresOps := apiService.MiddlewaresStacks()

	// Configure the endpoints with their handlers and middlewares.
	router := apiService.SetupRoutes(httprouter.New(),
		&MiddlewareMap{
			public: middlewaresPublic.Chain,
			ops:    middlewaresOps.Chain,
		},
	)
	// Wrap the router with the default http timeout handler.
	routerWithTimeout := http.TimeoutHandler(
		router,
		config.Server.RequestTimeout,
		"Timeout. Processing taking too long. Please reach out to support.")

	// Build the api server definition.
	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port),
		Handler:        routerWithTimeout,
		ReadTimeout:    config.Server.ReadTimeout,
		WriteTimeout:   config.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // Max headers size : 1MB
	}

	return &App{
		logger:         logger,
		config:         config,
		clock:          clock,
		server:         srv,
		limiter:        apiService.limiter,
		closers:        closers,
		queueConsumers: consumers,
	}, nil
}

// Run starts the api web server and a goroutine which is responsible to stop it.
func (app *App) Run() error {
	defer app.Clean()
	nCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(nCtx)

	g.Go(app.ConsumeQueues(gCtx, g))
	g.Go(func() error { return app.limiter.RunSweeper(gCtx, app.clock) })
	g.Go(app.Serve())
	g.Go(app.Stop(nCtx, gCtx))

	err := g.Wait()
	app.logger.Info("api server stopped",
		zap.String("app.host", app.config.Server.Host),
		zap.String("app.port", app.config.Server.Port),
		zap.Error(err),
	)
	return err
}

// Clean closes the storage clients.
func (app *App) Clean() {
	for _, f := range app.closers {
		if err := f(); err != nil {
			app.logger.Error("failed to close storage client", zap.Error(err))
		}
	}
}

// Serve starts the api web server. It returned error
// will be caught by the errorgroup.
func (app *App) Serve() func() error {
	return func() error {
		app.logger.Info("api server starting",
			zap.String("app.host", app.config.Server.Host),
			zap.String("app.port", app.config.Server.Port),
			zap.String("app.storage", app.config.Storage.Driver),
		)
		err := app.server.ListenAndServe()
		if err == http.ErrServerClosed {
			err = nil
		}
		return err
	}
}

// Stop listens for the group context and triggers the server graceful shutdown.
// It states the reason of its call. We proceed with a brutal shutdown if the
// the graceful did not complete successfully. We explicitly return `nil` to
// allow the errorgroup catches only the `Serve` method result.
func (app *App) Stop(nCtx, gCtx context.Context) func() error {
	return func() error {
		<-gCtx.Done()

		if nCtx.Err() != nil {
			app.logger.Info("api server stopping. reason: requested to stop")
		} else {
			app.logger.Info("api server stopping. reason: errored at running")
		}

		sCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
		defer cancel()
		err := app.server.Shutdown(sCtx)
		switch err {
		case nil, http.ErrServerClosed:
			app.logger.Info("api server graceful shutdown succeeded")
		case context.DeadlineExceeded:
			app.logger.Info("api server graceful shutdown timed out")
		default:
			app.logger.Info("api server graceful shutdown failed", zap.Error(err))
		}

		if err != nil && err != http.ErrServerClosed {
			app.logger.Info("api server going to force shutdown", zap.Error(app.server.Close()))
		}
		return nil
	}
}

// ConsumeQueues runs all queue consumers into separate controlled goroutines.
func (app *App) ConsumeQueues(gCtx context.Context, g *errgroup.Group) func() error {
	return func() error {
		for _, consume := range app.queueConsumers {
			f := func() error {
				return consume(gCtx)
			}
			g.Go(f)
		}
		return nil
	}
}
