// Package app wires the chat server's dependencies together and manages
// its lifecycle.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Bappoz/Rustatui-Chat/api/ws"
	"github.com/Bappoz/Rustatui-Chat/config"
	"github.com/Bappoz/Rustatui-Chat/internal/broadcast"
	"github.com/Bappoz/Rustatui-Chat/internal/registry"
	"github.com/Bappoz/Rustatui-Chat/internal/server"
	"github.com/Bappoz/Rustatui-Chat/pkg/logger"
)

// App holds all server dependencies.
type App struct {
	cfg        config.Config
	logger     logger.Logger
	clients    *registry.Clients
	rooms      *registry.Rooms
	bus        *broadcast.Bus
	chat       *server.ChatServer
	httpServer *http.Server // nil when the websocket gateway is disabled
	rootCtx    context.Context
	cancel     context.CancelFunc
}

// NewApp initializes and connects all application dependencies.
func NewApp(cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	baseLogger := logger.NewLogger(cfg.LogLevel, cfg.LogFile)
	rootCtx := logger.NewContext(context.Background(), baseLogger)
	rootCtx, cancel := context.WithCancel(rootCtx)

	log := baseLogger.WithModule("app")
	log.Infof("initializing application components")

	clients := registry.NewClients()
	rooms := registry.NewRooms()
	bus := broadcast.NewBus(cfg.MaxClients)
	chat := server.New(cfg.Address, cfg.MaxClients, clients, rooms, bus, baseLogger)

	var httpServer *http.Server
	if cfg.WSAddress != "" {
		httpServer = &http.Server{
			Addr: cfg.WSAddress,
			Handler: ws.SetupWebSocketRoutes(ws.WSConfig{
				Chat:       chat,
				RootCtx:    rootCtx,
				BufferSize: cfg.BufferSize,
			}),
		}
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		clients:    clients,
		rooms:      rooms,
		bus:        bus,
		chat:       chat,
		httpServer: httpServer,
		rootCtx:    rootCtx,
		cancel:     cancel,
	}, nil
}

// Start runs the listeners and blocks until a shutdown signal or a
// listener failure, then stops gracefully.
func (a *App) Start() error {
	log := a.logger.WithFields(map[string]interface{}{"address": a.cfg.Address})
	log.Infof("starting chat server")

	errs := make(chan error, 2)
	go func() {
		if err := a.chat.ListenAndServe(); err != nil {
			errs <- fmt.Errorf("tcp server: %w", err)
		}
	}()

	if a.httpServer != nil {
		a.logger.WithFields(map[string]interface{}{"address": a.cfg.WSAddress}).
			Infof("starting websocket gateway")
		go func() {
			if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errs <- fmt.Errorf("websocket gateway: %w", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		a.logger.Warnf("received shutdown signal: %s", sig)
		return a.Stop()
	case err := <-errs:
		a.logger.Errorf("listener failed: %v", err)
		a.Stop()
		return err
	}
}

// Stop shuts down the listeners. Established chat sessions end with
// their connections.
func (a *App) Stop() error {
	a.logger.Infof("initiating graceful shutdown")
	a.cancel()

	if a.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.logger.Errorf("websocket gateway shutdown error: %v", err)
		}
	}

	a.logger.Infof("closing TCP listener")
	a.chat.Stop()

	a.logger.Infof("shutdown completed")
	return nil
}
