package bootstrap

import (
	"go.uber.org/zap"

	"github.com/dreamware/namesrv/internal/config"
)

// Controller is the service whose lifecycle the bootstrap drives.
type Controller interface {
	// Initialize prepares the service. false aborts startup.
	Initialize() bool
	// Start begins serving.
	Start() error
	// Shutdown releases everything Initialize and Start acquired. It must
	// be safe on a controller that was never started.
	Shutdown()
	// Configuration returns the registry of the configuration in effect.
	Configuration() *config.Registry
}

// ControllerFactory constructs a controller from the resolved configuration.
type ControllerFactory func(svc *config.ServiceConfig, tr *config.TransportConfig, logger *zap.Logger) Controller

// LoggingInitializer builds the process logger for a home directory and an
// optional level override.
type LoggingInitializer func(home, level string) (*zap.Logger, error)
