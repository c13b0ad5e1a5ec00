package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"watch-tracker/domain/repository"
	"watch-tracker/infrastructure/cache"
	youtubeclient "watch-tracker/infrastructure/clients/youtube"
	"watch-tracker/infrastructure/configuration"
	"watch-tracker/infrastructure/logger"
	"watch-tracker/infrastructure/persistence"
	"watch-tracker/infrastructure/realtime"
	"watch-tracker/interfaces/cli"
	httpHandler "watch-tracker/interfaces/http"
	"watch-tracker/server"
	"watch-tracker/usecase"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	os.Exit(run())
}

// run wires and starts the application. It returns the exit code so that
// deferred cleanup runs before the process exits.
func run() int {
	defer recoverPanic()

	mode := "serve"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}
	if mode == "status" {
		// Keep stdout for the report.
		logger.SetOutput(os.Stderr)
	}

	// Load env from files (non-destructive; OS env still has precedence)
	if loaded := configuration.LoadEnvFromFile("config.env", ".env"); len(loaded) > 0 {
		logger.GetLogger().WithField("keys", len(loaded)).Info("Loaded environment from file")
		configuration.Reload()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, sqlCache := openStore(ctx, configuration.C)
	defer func() {
		if err := store.Close(); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Failed to close storage")
		}
	}()

	var resolutionCache repository.IResolutionCache
	if redisClient := openRedis(ctx); redisClient != nil {
		defer redisClient.Close()
		resolutionCache = cache.NewResolutionCache(redisClient)
	} else if sqlCache != nil {
		resolutionCache = sqlCache
	}
	tracker := usecase.NewTrackerUseCase(newResolver(ctx, resolutionCache), store, usecase.TrackerOptions{
		Location:    configuration.C.App.Location(),
		DefaultGoal: configuration.C.App.DefaultGoalMinutes,
	})
	tracker.Hydrate(ctx)

	switch mode {
	case "serve":
		if err := serve(ctx, tracker); err != nil {
			logger.GetLogger().WithField("error", err).Error("Server returned an error")
			return 2
		}
	case "status":
		fmt.Println(cli.RenderStatus(cli.Report{
			Snapshot: tracker.Snapshot(),
			Series:   tracker.MonthlySeries(),
			Videos:   tracker.Videos(),
		}))
	default:
		fmt.Fprintf(os.Stderr, "usage: %s [serve|status]\n", os.Args[0])
		return 1
	}
	return 0
}

func serve(ctx context.Context, tracker *usecase.TrackerUseCase) error {
	hub := realtime.NewProgressHub()
	unsubscribe := tracker.Subscribe(hub.BroadcastProgress)
	defer unsubscribe()

	if os.Getenv("ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := server.InitiateRouter(httpHandler.NewTrackerHandler(tracker, hub))

	err := runHTTPServer(ctx, configuration.C.App.Addr(), router)
	if closeErr := tracker.Close(context.Background()); closeErr != nil {
		logger.GetLogger().WithField("error", closeErr).Error("Final persist failed")
	}
	return err
}

// newHTTPServer builds the API server. Request contexts derive from ctx so
// long lived progress streams end as soon as shutdown starts.
func newHTTPServer(ctx context.Context, addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

// runHTTPServer serves until ctx is done, then shuts down gracefully.
func runHTTPServer(ctx context.Context, addr string, handler http.Handler) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return serveHTTP(ctx, listener, handler)
}

func serveHTTP(ctx context.Context, listener net.Listener, handler http.Handler) error {
	httpServer := newHTTPServer(ctx, listener.Addr().String(), handler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.GetLogger().WithField("addr", httpServer.Addr).Info("Starting application")
		if err := httpServer.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.GetLogger().Info("Application shutdown requested")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openPostgres is replaced in tests.
var openPostgres = persistence.NewPostgreSQLDB

// openStore picks the storage medium from configuration. An unreachable
// backend falls back to the file store so startup never fails on storage.
// The postgres driver also hands back a resolution cache on the same database.
func openStore(ctx context.Context, cfg configuration.Config) (repository.IKeyValueStore, *persistence.ResolutionCacheRepository) {
	prefix := cfg.Storage.KeyPrefix
	var sqlCache *persistence.ResolutionCacheRepository

	store, err := func() (repository.IKeyValueStore, error) {
		switch cfg.Storage.Driver {
		case "memory":
			return persistence.NewMemoryStore(), nil
		case "redis":
			client, err := cache.NewCache(ctx, cfg.RedisClient.Addr(), cfg.RedisClient.Username, cfg.RedisClient.Password, cfg.RedisClient.DB)
			if err != nil {
				return nil, err
			}
			return cache.NewStateStoreRedis(client, prefix), nil
		case "postgres":
			db, err := openPostgres()
			if err != nil {
				return nil, err
			}
			if err := persistence.EnsureStateSchema(db); err != nil {
				_ = db.Close()
				return nil, err
			}
			if err := persistence.EnsureResolutionCacheSchema(db); err == nil {
				sqlCache = persistence.NewResolutionCacheRepository(db)
			} else {
				logger.GetLogger().WithField("error", err).Warn("Resolution cache table not available")
			}
			return persistence.NewStateStore(db, prefix), nil
		case "mssql":
			db, err := persistence.NewMSSQLDB()
			if err != nil {
				return nil, err
			}
			if err := persistence.EnsureStateSchemaMSSQL(db); err != nil {
				_ = db.Close()
				return nil, err
			}
			return persistence.NewStateStoreMSSQL(db, prefix), nil
		case "mysql":
			db, err := persistence.NewRepositories()
			if err != nil {
				return nil, err
			}
			if err := persistence.EnsureStateSchemaGorm(db); err != nil {
				return nil, err
			}
			return persistence.NewStateStoreGorm(db, prefix), nil
		case "mongo":
			m := cfg.Database.Mongo
			client, err := persistence.NewMongoDb(m.Host, m.Port, m.User, m.Password)
			if err != nil {
				return nil, err
			}
			return persistence.NewStateStoreMongo(client, m.Name, prefix), nil
		case "file", "":
			return persistence.NewFileStore(cfg.Storage.DataDir, prefix)
		default:
			return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
		}
	}()
	if err == nil {
		logger.GetLogger().WithField("driver", cfg.Storage.Driver).Info("Storage initialized")
		return store, sqlCache
	}

	logger.GetLogger().WithField("driver", cfg.Storage.Driver).WithField("error", err).
		Warn("Storage not available - falling back to file store")
	fileStore, fileErr := persistence.NewFileStore(cfg.Storage.DataDir, prefix)
	if fileErr != nil {
		logger.GetLogger().WithField("error", fileErr).Error("File store not available - state will not survive restart")
		return persistence.NewMemoryStore(), nil
	}
	return fileStore, nil
}

// openRedis connects the resolution cache. Redis is optional.
func openRedis(ctx context.Context) *redis.Client {
	if os.Getenv("REDIS_ADDR") == "" && os.Getenv("REDIS_HOST") == "" && configuration.C.Storage.Driver != "redis" {
		return nil
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	rc := configuration.C.RedisClient
	client, err := cache.NewCache(pingCtx, rc.Addr(), rc.Username, rc.Password, rc.DB)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis not available - resolving without cache")
		return nil
	}
	return client
}

func newResolver(ctx context.Context, resolutionCache repository.IResolutionCache) repository.IVideoResolver {
	ytConfig := configuration.GetYouTubeConfig()
	logger.GetLogger().
		WithField("hasAPIKey", ytConfig.APIKey != "").
		WithField("hasAccessToken", ytConfig.AccessToken != "").
		WithField("hasRefreshToken", ytConfig.RefreshToken != "").
		Info("Loaded YouTube configuration state")

	if !ytConfig.HasCredentials() {
		logger.GetLogger().Warn("YouTube API credentials not configured - adding videos is disabled")
		return youtubeclient.DisabledResolver{}
	}

	client, err := youtubeclient.NewYouTubeClient(ctx, &youtubeclient.Config{
		ClientID:     ytConfig.ClientID,
		ClientSecret: ytConfig.ClientSecret,
		RedirectURL:  ytConfig.RedirectURL,
		AccessToken:  ytConfig.AccessToken,
		RefreshToken: ytConfig.RefreshToken,
		APIKey:       ytConfig.APIKey,
		Endpoint:     ytConfig.Endpoint,
	})
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Failed to initialize YouTube client - adding videos is disabled")
		return youtubeclient.DisabledResolver{}
	}
	logger.GetLogger().WithField("mode", client.Mode()).Info("YouTube client initialized")

	return youtubeclient.NewCachedResolver(client, resolutionCache, ytConfig.CacheTTL)
}
