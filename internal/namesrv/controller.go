package namesrv

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dreamware/namesrv/internal/config"
	"github.com/dreamware/namesrv/internal/kvconfig"
)

// DefaultKVDumpInterval is how often the KV config table is written to the log.
const DefaultKVDumpInterval = 10 * time.Minute

// ErrNotInitialized is returned by Start before a successful Initialize.
var ErrNotInitialized = errors.New("controller not initialized")

// Controller runs the name server: the route table, the broker monitor,
// the KV config store and the HTTP API in front of them.
//
// Lifecycle: NewController, then Initialize, then Start. Shutdown may be
// called at any point and any number of times.
type Controller struct {
	svc      *config.ServiceConfig
	tr       *config.TransportConfig
	logger   *zap.SugaredLogger
	registry *config.Registry
	routes   *RouteTable
	kv       *kvconfig.Manager
	monitor  *BrokerMonitor
	validate *validator.Validate

	listener net.Listener
	server   *http.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	kvDumpInterval time.Duration
	shutdownOnce   sync.Once
}

// NewController creates a controller for the given configuration. Nothing
// is opened until Initialize.
func NewController(svc *config.ServiceConfig, tr *config.TransportConfig, logger *zap.Logger) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	routes := NewRouteTable()
	return &Controller{
		svc:            svc,
		tr:             tr,
		logger:         logger.Sugar(),
		registry:       config.NewRegistry(svc.ConfigStorePath, svc, tr),
		routes:         routes,
		kv:             kvconfig.NewManager(svc.KVConfigPath, logger),
		monitor:        NewBrokerMonitor(routes, svc.ScanInterval(), svc.BrokerExpiry(), logger),
		validate:       validator.New(),
		ctx:            ctx,
		cancel:         cancel,
		kvDumpInterval: DefaultKVDumpInterval,
	}
}

// Initialize validates the transport settings, loads the KV config store
// and binds the listener. It returns false on any failure; the cause is
// logged.
func (c *Controller) Initialize() bool {
	if err := c.validate.Struct(c.tr); err != nil {
		c.logger.Errorw("Invalid transport config", "error", err)
		return false
	}
	if c.svc.ScanInterval() <= 0 || c.svc.BrokerExpiry() <= 0 {
		c.logger.Errorw("Invalid broker scan settings",
			"scanNotActiveBrokerInterval", c.svc.ScanNotActiveBrokerInterval,
			"brokerChannelExpiredTime", c.svc.BrokerChannelExpiredTime)
		return false
	}

	if err := c.kv.Load(); err != nil {
		c.logger.Errorw("Failed to load KV config", "path", c.kv.Path(), "error", err)
		return false
	}

	ln, err := net.Listen("tcp", c.tr.Addr())
	if err != nil {
		c.logger.Errorw("Failed to bind listener", "addr", c.tr.Addr(), "error", err)
		return false
	}
	if tcpAddr, ok := ln.Addr().(*net.TCPAddr); ok && c.tr.ListenPort == 0 {
		c.tr.ListenPort = tcpAddr.Port
	}
	c.listener = &bufferedListener{
		Listener: ln,
		sndBuf:   c.tr.ServerSocketSndBufSize,
		rcvBuf:   c.tr.ServerSocketRcvBufSize,
	}

	c.server = &http.Server{
		Handler:           c.router(),
		ReadHeaderTimeout: c.tr.ReadHeaderTimeout(),
		IdleTimeout:       c.tr.IdleTimeout(),
	}

	c.logger.Infow("Name server initialized", "addr", ln.Addr().String())
	return true
}

// Start serves the HTTP API and starts the background tasks.
func (c *Controller) Start() error {
	if c.server == nil {
		return ErrNotInitialized
	}
	if err := c.ctx.Err(); err != nil {
		return fmt.Errorf("start after shutdown: %w", err)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := c.server.Serve(c.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.logger.Errorw("HTTP server stopped", "error", err)
		}
	}()

	c.monitor.Start(c.ctx)

	c.wg.Add(1)
	go c.runPeriodically(c.kvDumpInterval, c.kv.Dump)

	c.logger.Infow("Name server started", "addr", c.Addr())
	return nil
}

func (c *Controller) runPeriodically(interval time.Duration, fn func()) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fn()
		case <-c.ctx.Done():
			return
		}
	}
}

// Shutdown stops the background tasks and the HTTP server, then flushes
// the KV config store when Initialize had succeeded. In-flight requests get
// up to serverShutdownTimeoutSeconds to finish.
func (c *Controller) Shutdown() {
	c.shutdownOnce.Do(func() {
		c.cancel()
		c.monitor.Stop()

		if c.server != nil {
			var timeout time.Duration
			c.registry.View(func() { timeout = c.tr.ShutdownTimeout() })
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			if err := c.server.Shutdown(ctx); err != nil {
				c.logger.Warnw("HTTP server shutdown incomplete", "error", err)
			}
		}
		if c.listener != nil {
			_ = c.listener.Close()
		}

		c.wg.Wait()

		if c.server != nil {
			if err := c.kv.Persist(); err != nil {
				c.logger.Errorw("Failed to flush KV config", "path", c.kv.Path(), "error", err)
			}
		}
		c.logger.Infow("Name server stopped")
	})
}

// Configuration returns the registry of the configuration in effect.
func (c *Controller) Configuration() *config.Registry {
	return c.registry
}

// Addr returns the bound listener address, or "" before Initialize.
func (c *Controller) Addr() string {
	if c.listener == nil {
		return ""
	}
	return c.listener.Addr().String()
}

// Routes returns the route table.
func (c *Controller) Routes() *RouteTable {
	return c.routes
}

// KVConfig returns the KV config store.
func (c *Controller) KVConfig() *kvconfig.Manager {
	return c.kv
}
