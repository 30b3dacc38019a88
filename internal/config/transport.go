package config

import (
	"net"
	"strconv"
	"time"
)

// DefaultListenPort is the port the name server listens on unless overridden.
const DefaultListenPort = 9876

// TransportConfig holds the listener settings of the name server.
type TransportConfig struct {
	// BindAddress is the interface to listen on; empty means all interfaces.
	BindAddress string

	ListenPort int `validate:"min=0,max=65535"`

	// ServerWorkerThreads caps the number of requests served concurrently.
	ServerWorkerThreads int `validate:"min=1"`

	ServerChannelMaxIdleTimeSeconds int `validate:"min=0"`
	ServerReadHeaderTimeoutSeconds  int `validate:"min=1"`
	ServerShutdownTimeoutSeconds    int `validate:"min=1"`

	// Socket buffer sizes applied to accepted connections; 0 keeps the OS default.
	ServerSocketSndBufSize int `validate:"min=0"`
	ServerSocketRcvBufSize int `validate:"min=0"`
}

// NewTransportConfig returns a TransportConfig with built-in defaults.
func NewTransportConfig() *TransportConfig {
	return &TransportConfig{
		ListenPort:                      DefaultListenPort,
		ServerWorkerThreads:             8,
		ServerChannelMaxIdleTimeSeconds: 120,
		ServerReadHeaderTimeoutSeconds:  5,
		ServerShutdownTimeoutSeconds:    5,
		ServerSocketSndBufSize:          4096,
		ServerSocketRcvBufSize:          4096,
	}
}

// Bindings returns the binding table of the record.
func (c *TransportConfig) Bindings() []Binding {
	return []Binding{
		stringField("bindAddress", &c.BindAddress),
		intField("listenPort", &c.ListenPort),
		intField("serverWorkerThreads", &c.ServerWorkerThreads),
		intField("serverChannelMaxIdleTimeSeconds", &c.ServerChannelMaxIdleTimeSeconds),
		intField("serverReadHeaderTimeoutSeconds", &c.ServerReadHeaderTimeoutSeconds),
		intField("serverShutdownTimeoutSeconds", &c.ServerShutdownTimeoutSeconds),
		intField("serverSocketSndBufSize", &c.ServerSocketSndBufSize),
		intField("serverSocketRcvBufSize", &c.ServerSocketRcvBufSize),
	}
}

// Addr returns the host:port the listener binds to.
func (c *TransportConfig) Addr() string {
	return net.JoinHostPort(c.BindAddress, strconv.Itoa(c.ListenPort))
}

func (c *TransportConfig) IdleTimeout() time.Duration {
	return time.Duration(c.ServerChannelMaxIdleTimeSeconds) * time.Second
}

func (c *TransportConfig) ReadHeaderTimeout() time.Duration {
	return time.Duration(c.ServerReadHeaderTimeoutSeconds) * time.Second
}

func (c *TransportConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ServerShutdownTimeoutSeconds) * time.Second
}
