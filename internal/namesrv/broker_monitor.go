package namesrv

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// BrokerMonitor periodically drops brokers that stopped sending heartbeats.
// Thread-safe: Start and Stop may be called from different goroutines.
type BrokerMonitor struct {
	routes   *RouteTable
	logger   *zap.SugaredLogger
	ctx      context.Context    // Cancelled by Stop
	cancel   context.CancelFunc // Cancel function for shutdown
	interval time.Duration      // How often to scan
	expiry   time.Duration      // How long a broker may stay silent
	wg       sync.WaitGroup     // Tracks the scan loop
	once     sync.Once          // Guards Start
}

// NewBrokerMonitor creates a monitor that scans routes every interval and
// expires brokers silent for longer than expiry.
//
// Example:
//
//	monitor := NewBrokerMonitor(routes, 10*time.Second, 2*time.Minute, logger)
//	monitor.Start(ctx)
//	defer monitor.Stop()
func NewBrokerMonitor(routes *RouteTable, interval, expiry time.Duration, logger *zap.Logger) *BrokerMonitor {
	ctx, cancel := context.WithCancel(context.Background())
	return &BrokerMonitor{
		routes:   routes,
		logger:   logger.Sugar(),
		ctx:      ctx,
		cancel:   cancel,
		interval: interval,
		expiry:   expiry,
	}
}

// Start launches the scan loop in the background. It stops when ctx is
// cancelled or Stop is called. Later calls are no-ops.
func (m *BrokerMonitor) Start(ctx context.Context) {
	m.once.Do(func() {
		m.wg.Add(1)
		go m.run(ctx)
	})
}

func (m *BrokerMonitor) run(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.Infow("Broker monitor started", "interval", m.interval, "expiry", m.expiry)

	for {
		select {
		case <-ticker.C:
			m.ScanOnce()
		case <-ctx.Done():
			return
		case <-m.ctx.Done():
			return
		}
	}
}

// ScanOnce expires inactive brokers now and returns their addresses.
func (m *BrokerMonitor) ScanOnce() []string {
	expired := m.routes.ExpireInactive(m.expiry)
	for _, addr := range expired {
		m.logger.Warnw("Broker channel expired", "brokerAddr", addr, "expiry", m.expiry)
	}
	return expired
}

// Stop cancels the scan loop and waits for it to exit. Safe to call
// without a prior Start and more than once.
func (m *BrokerMonitor) Stop() {
	m.cancel()
	m.wg.Wait()
	m.logger.Infow("Broker monitor stopped")
}
