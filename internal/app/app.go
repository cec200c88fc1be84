package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/mehmetcc/travelize/internal/catalog"
	"github.com/mehmetcc/travelize/internal/config"
	"github.com/mehmetcc/travelize/internal/database"
	"github.com/mehmetcc/travelize/internal/server"
	"github.com/mehmetcc/travelize/internal/token"
	"github.com/mehmetcc/travelize/internal/user"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type App struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *sql.DB
	mongo  *mongo.Client
	server *http.Server
}

// New opens the configured store, prepares its schema, seeds the bootstrap
// admin and builds the HTTP server.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	users, docs, err := a.openStores(ctx)
	if err != nil {
		return nil, multierr.Append(err, a.Close())
	}

	tokens, err := token.NewTokenService(logger, cfg.JWTConfig)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("create token service: %w", err), a.Close())
	}

	directory := user.NewDirectory(users, logger)
	if email := cfg.BootstrapConfig.AdminEmail; email != "" {
		if err := directory.EnsureAdmin(ctx, email); err != nil {
			return nil, multierr.Append(fmt.Errorf("bootstrap admin: %w", err), a.Close())
		}
		logger.Info("bootstrap admin ensured", zap.String("email", user.NormalizeEmail(email)))
	}

	router := server.NewRouter(cfg.AppConfig, server.Deps{
		Tokens:    tokens,
		Directory: directory,
		Catalog:   docs,
	}, logger)

	a.server = &http.Server{
		Addr:         net.JoinHostPort("", cfg.AppConfig.Port),
		Handler:      router,
		ReadTimeout:  cfg.AppConfig.ReadTimeout,
		WriteTimeout: cfg.AppConfig.WriteTimeout,
		IdleTimeout:  cfg.AppConfig.IdleTimeout,
		ErrorLog:     zap.NewStdLog(logger.Named("http")),
	}
	return a, nil
}

func (a *App) openStores(ctx context.Context) (user.Repository, catalog.Repository, error) {
	switch a.cfg.StoreConfig.Driver {
	case config.DriverMemory:
		a.logger.Warn("using in-memory store, data is lost on restart")
		return user.NewMemoryRepo(), catalog.NewMemoryRepo(), nil

	case config.DriverMongo:
		client, db, err := database.ConnectMongo(ctx, a.cfg.MongoConfig)
		if err != nil {
			return nil, nil, err
		}
		a.mongo = client
		coll := db.Collection(user.CollectionName)
		if err := user.EnsureIndexes(ctx, coll); err != nil {
			return nil, nil, fmt.Errorf("create user indexes: %w", err)
		}
		a.logger.Info("connected to mongo", zap.String("database", a.cfg.MongoConfig.Database))
		return user.NewMongoRepo(coll, a.logger), catalog.NewMongoRepo(db, a.logger), nil

	default:
		db, err := database.Init(ctx, a.cfg.DbConfig)
		if err != nil {
			return nil, nil, err
		}
		a.db = db
		database.SetMigrationLogger(a.logger)
		if err := database.Migrate(ctx, db); err != nil {
			return nil, nil, fmt.Errorf("migrate database: %w", err)
		}
		a.logger.Info("connected to postgres")
		return user.NewPostgresRepo(db, a.logger), catalog.NewPostgresRepo(db, a.logger), nil
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	a.logger.Info("http server starting", zap.String("addr", a.server.Addr))
	go func() {
		errCh <- a.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.AppConfig.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server exited: %w", err)
	}
}

// Close releases the store clients. It is safe to call on a partially built App.
func (a *App) Close() error {
	var err error
	if a.db != nil {
		err = multierr.Append(err, a.db.Close())
		a.db = nil
	}
	if a.mongo != nil {
		err = multierr.Append(err, a.mongo.Disconnect(context.Background()))
		a.mongo = nil
	}
	return err
}
