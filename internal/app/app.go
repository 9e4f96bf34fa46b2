package app

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-server/internal/config"
	"github.com/adanyl0v/go-todo-server/internal/database"
)

const (
	listenHost = "0.0.0.0"
	rootPath   = "/"
)

type options struct {
	openDatabase DatabaseOpener
	logOutput    io.Writer
}

type Option func(*options)

// WithDatabaseOpener replaces the connection built from the DB_*
// variables.
func WithDatabaseOpener(fn DatabaseOpener) Option {
	return func(o *options) {
		o.openDatabase = fn
	}
}

// WithLogOutput sets the writer the local console logger writes to.
// It defaults to os.Stdout, where NewDefaultLogger writes in main.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) {
		o.logOutput = w
	}
}

// App is a started, listening application.
type App struct {
	cfg      *config.Config
	logger   zerolog.Logger
	db       *database.DB
	server   *http.Server
	listener net.Listener
}

// Bootstrap initializes the application step by step and opens the
// listener. The first failing step aborts the startup, nothing is
// retried.
func Bootstrap(ctx context.Context, logger zerolog.Logger, reader config.Reader, opts ...Option) (_ *App, err error) {
	o := options{
		openDatabase: openDatabase,
		logOutput:    os.Stdout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	cfg, err := readConfig(logger, reader)
	if err != nil {
		return nil, err
	}
	logger, err = NewApplicationLogger(logger, cfg.Env, o.logOutput)
	if err != nil {
		return nil, err
	}

	container, err := NewContainer(logger)
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to build container")
		return nil, err
	}

	engine := NewApplication(cfg.Env, logger)
	router := NewRouter(RouterOptions{
		CaseSensitive: true,
		Strict:        false,
	})

	db, err := o.openDatabase(cfg.Database, logger)
	if err != nil {
		logger.Error().
			Err(err).
			Str("dialect", cfg.Database.Dialect).
			Msg("failed to open database")
		return nil, err
	}
	defer func() {
		if err != nil {
			closeDatabase(logger, db)
		}
	}()

	err = prepareDatabase(ctx, logger, db, cfg.Database.ForceSync())
	if err != nil {
		return nil, err
	}
	err = provideDatabase(container, db)
	if err != nil {
		return nil, err
	}

	server := NewServer(container, router, ServerOptions{RootPath: rootPath}, engine)
	server.SetErrorConfig(installNotFoundHandler)
	handler, err := server.Build()
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to build server")
		return nil, err
	}

	port := cfg.HTTP.ListenPort()
	listener, err := net.Listen("tcp", net.JoinHostPort(listenHost, strconv.Itoa(port)))
	if err != nil {
		logger.Error().
			Err(err).
			Int("port", port).
			Msg("failed to listen")
		return nil, err
	}
	logger.Info().
		Str("host", listenHost).
		Int("port", port).
		Msgf("%s listening on %d", cfg.AppName, port)

	app := &App{
		cfg:    cfg,
		logger: logger,
		db:     db,
		server: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		},
		listener: listener,
	}

	logger.Info().Msgf("%s has been initialized", cfg.AppName)
	return app, nil
}

func (a *App) Addr() net.Addr {
	return a.listener.Addr()
}

// Serve handles requests until ctx is done, then shuts the server down
// gracefully and closes the database.
func (a *App) Serve(ctx context.Context) error {
	defer closeDatabase(a.logger, a.db)

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Serve(a.listener)
	}()

	select {
	case err := <-errCh:
		a.logger.Error().
			Err(err).
			Msg("failed to serve http")
		return err
	case <-ctx.Done():
	}

	a.logger.Info().Msg("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
	defer cancel()

	err := a.server.Shutdown(shutdownCtx)
	if err != nil {
		a.logger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	a.logger.Info().Msg("shut down http server")
	return nil
}

// Run bootstraps the application and serves it until ctx is done.
func Run(ctx context.Context, logger zerolog.Logger, reader config.Reader, opts ...Option) error {
	app, err := Bootstrap(ctx, logger, reader, opts...)
	if err != nil {
		return err
	}
	return app.Serve(ctx)
}
