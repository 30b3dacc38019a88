package bootstrap

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/dreamware/namesrv/internal/metrics"
)

// SignalNotifier registers c for delivery of sig. signal.Notify satisfies it.
type SignalNotifier func(c chan<- os.Signal, sig ...os.Signal)

// SignalStopper undoes a SignalNotifier registration. signal.Stop satisfies it.
type SignalStopper func(c chan<- os.Signal)

// ShutdownHook stops the controller exactly once no matter how many times,
// or from how many goroutines, it is invoked.
type ShutdownHook struct {
	controller  Controller
	logger      *zap.SugaredLogger
	started     chan struct{}
	done        chan struct{}
	mu          sync.Mutex
	invocations int
	hasShutdown bool
}

// NewShutdownHook creates a hook for controller.
func NewShutdownHook(controller Controller, logger *zap.Logger) *ShutdownHook {
	return &ShutdownHook{
		controller: controller,
		logger:     logger.Sugar(),
		started:    make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Run shuts the controller down on the first call. Every call, including
// later ones, is counted and logged. Calls are serialized, so a concurrent
// caller returns only after the first shutdown finished.
func (h *ShutdownHook) Run() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.invocations++
	metrics.ShutdownInvocations.Inc()
	h.logger.Infow("Shutdown hook was invoked", "invocations", h.invocations)

	if h.hasShutdown {
		return
	}
	close(h.started)

	begin := time.Now()
	h.controller.Shutdown()
	elapsed := time.Since(begin)
	metrics.ShutdownDuration.Observe(elapsed.Seconds())
	h.logger.Infow("Shutdown hook over", "elapsedMs", elapsed.Milliseconds())

	h.hasShutdown = true
	close(h.done)
}

// Started is closed when the first invocation begins shutting down.
func (h *ShutdownHook) Started() <-chan struct{} { return h.started }

// Done is closed once the controller has been shut down.
func (h *ShutdownHook) Done() <-chan struct{} { return h.done }

// Invocations returns how many times Run has been called.
func (h *ShutdownHook) Invocations() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.invocations
}

// Install subscribes to SIGINT and SIGTERM through notify and runs the hook
// on a new goroutine for every delivered signal until the hook completes.
// Once it has, the channel is released through stop so later signals get
// their default behavior again. A nil notify means signal.Notify and a nil
// stop means signal.Stop.
func (h *ShutdownHook) Install(notify SignalNotifier, stop SignalStopper) {
	if notify == nil {
		notify = signal.Notify
	}
	if stop == nil {
		stop = signal.Stop
	}
	sigs := make(chan os.Signal, 1)
	notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer stop(sigs)
		for {
			select {
			case sig := <-sigs:
				h.logger.Infow("Received signal", "signal", sig.String())
				go h.Run()
			case <-h.done:
				return
			}
		}
	}()
}
