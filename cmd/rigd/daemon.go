package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dougsko/rigd/pkg/client"
	"github.com/dougsko/rigd/pkg/config"
	"github.com/dougsko/rigd/pkg/engine"
	"github.com/dougsko/rigd/pkg/logging"
)

// RigDaemon ties the engine's control socket to the HTTP API
type RigDaemon struct {
	config *config.Config
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	engine       *engine.Engine
	socketClient *client.SocketClient
	router       *gin.Engine
	webServer    *http.Server

	socketPath string
}

// NewRigDaemon creates a new daemon instance
func NewRigDaemon(cfg *config.Config, opts ...engine.Option) (*RigDaemon, error) {
	ctx, cancel := context.WithCancel(context.Background())

	socketPath := cfg.API.UnixSocket
	if socketPath == "" {
		socketPath = "/tmp/rigd.sock"
	}

	daemon := &RigDaemon{
		config:       cfg,
		ctx:          ctx,
		cancel:       cancel,
		socketPath:   socketPath,
		socketClient: client.NewSocketClient(socketPath),
	}

	daemon.engine = engine.New(cfg, socketPath, opts...)

	if err := daemon.setupWebServer(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to setup web server: %w", err)
	}

	return daemon, nil
}

// Start starts the engine and, when enabled, the web server
func (d *RigDaemon) Start() error {
	logging.Info("daemon", "Starting rigd daemon...")

	if err := d.engine.Start(); err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}

	if !d.socketClient.IsConnected() {
		d.engine.Stop()
		return fmt.Errorf("failed to connect to engine socket")
	}

	if !d.config.Web.Enabled {
		return nil
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		logging.Info("daemon", "Starting web server", map[string]interface{}{"addr": d.webServer.Addr})
		if err := d.webServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error("daemon", "Web server error", map[string]interface{}{"error": err.Error()})
		}
	}()

	return nil
}

// Stop stops the daemon gracefully
func (d *RigDaemon) Stop() error {
	logging.Info("daemon", "Stopping daemon...")

	// ends websocket streams before the server waits on them
	d.cancel()

	if d.config.Web.Enabled && d.webServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := d.webServer.Shutdown(ctx); err != nil {
			logging.Warnf("daemon", "Web server shutdown error: %v", err)
		}
	}

	err := d.engine.Stop()

	d.wg.Wait()

	logging.Info("daemon", "Daemon stopped")
	return err
}

func (d *RigDaemon) setupWebServer() error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api/v1")
	{
		api.GET("/status", d.handleGetStatus)
		api.GET("/radio", d.handleGetRadio)
		api.PUT("/radio/frequency", d.handleSetFrequency)
		api.PUT("/radio/mode", d.handleSetMode)
		api.PUT("/radio/ptt", d.handleSetPTT)
		api.GET("/radio/level/:name", d.handleGetLevel)
		api.PUT("/radio/level/:name", d.handleSetLevel)
		api.GET("/events", d.handleGetEvents)
		api.GET("/models", d.handleGetModels)
	}
	router.GET("/ws/events", d.handleEventsWebSocket)

	d.router = router
	d.webServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", d.config.Web.BindAddress, d.config.Web.Port),
		Handler: router,
	}

	return nil
}
