package routebot

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DenisKhanov/RouteBOT/internal/logcfg"
	"github.com/DenisKhanov/RouteBOT/internal/routebot/config"
	"github.com/sirupsen/logrus"
)

// App represents the application structure responsible for initializing dependencies
// and running the routing bot with its status server.
type App struct {
	serviceProvider *ServiceProvider // The service provider for dependency injection
	config          *config.Config   // The configuration object for the application
	statusServer    *http.Server     // Status page server, nil when disabled
	envFile         string
}

// NewApp creates a new instance of the application.
func NewApp(ctx context.Context, envFile string) (*App, error) {
	app := &App{envFile: envFile}
	err := app.initDeps(ctx)
	if err != nil {
		return nil, err
	}
	return app, nil
}

// Run starts the bot and blocks until a shutdown signal or a transport failure.
func (a *App) Run() error {
	return a.runRouteBot()
}

// initDeps initializes all dependencies required by the application.
func (a *App) initDeps(ctx context.Context) error {
	inits := []func(context.Context) error{
		a.initConfig,
		a.initServiceProvider,
		a.initStatusServer,
	}

	for _, f := range inits {
		err := f(ctx)
		if err != nil {
			return err
		}
	}

	return nil
}

// initConfig initializes the application configuration.
func (a *App) initConfig(_ context.Context) error {
	cfg, err := config.NewConfig(a.envFile)
	if err != nil {
		return err
	}
	a.config = cfg
	if err = logcfg.RunLoggerConfig(a.config.EnvLogsLevel, a.config.EnvLogFileName); err != nil {
		return err
	}
	logrus.Infof("RouteBOT started with transport %s and %s store", cfg.EnvTransport, cfg.EnvStore)
	return nil
}

// initServiceProvider initializes the service provider for dependency injection.
func (a *App) initServiceProvider(_ context.Context) error {
	a.serviceProvider = NewServiceProvider(a.config)
	_, err := a.serviceProvider.Engine()
	return err
}

// initStatusServer initializes the status page server.
func (a *App) initStatusServer(_ context.Context) error {
	if a.config.EnvStatusServerAddr == "" {
		logrus.Info("Status server disabled")
		return nil
	}
	a.statusServer = &http.Server{
		Addr:              a.config.EnvStatusServerAddr,
		Handler:           a.serviceProvider.Handler().Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return nil
}

// runRouteBot runs the status server, the idle conversation janitor and the
// transport loop, and shuts everything down on SIGINT/SIGTERM.
func (a *App) runRouteBot() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.statusServer != nil {
		go func() {
			logrus.Infof("Status server started on: %s", a.config.EnvStatusServerAddr)
			if err := a.statusServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logrus.WithError(err).Error("Status server failed")
			}
		}()
	}

	go a.runJanitor(ctx)

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-signalChan:
			logrus.Infof("Received %v signal, shutting down bot...", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	engine, err := a.serviceProvider.Engine()
	if err != nil {
		return err
	}
	transport, err := a.serviceProvider.Transport()
	if err != nil {
		return err
	}

	a.serviceProvider.StatusHub().MarkReady("RouteBOT está conectado!")
	runErr := transport.Run(ctx, engine.HandleMessage)
	if runErr != nil {
		logrus.WithError(runErr).Error("Transport loop stopped")
	}
	logrus.Info("Shutting down main loop...")
	cancel()

	if a.statusServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err = a.statusServer.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Error("Status server shutdown error")
		}
	}
	logrus.Info("RouteBOT exited")
	return runErr
}

// runJanitor evicts idle conversations from the memory store and refreshes the store size gauge.
func (a *App) runJanitor(ctx context.Context) {
	store := a.serviceProvider.MemoryStore()
	if store == nil {
		return
	}
	ttl := a.config.ConversationTTL()
	metrics := a.serviceProvider.Metrics()

	ticker := time.NewTicker(a.config.JanitorInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			store.EvictIdle(ttl)
			metrics.SetConversations(store.Len())
		}
	}
}
