package config

import (
	"os"
	"path/filepath"
	"time"
)

// HomeKey is the name under which the home directory is reported.
const HomeKey = "namesrvHome"

// ServiceConfig holds the name server settings.
type ServiceConfig struct {
	// Home is the installation directory. It comes from NAMESRV_HOME only.
	Home string

	// KVConfigPath is where the KV config store is persisted.
	KVConfigPath string

	// ConfigStorePath is where configuration updates are persisted. When a
	// properties file is given at startup this is set to that file.
	ConfigStorePath string

	ProductEnvName string

	ClusterTest bool

	// OrderMessageEnable adds the order topic config to route lookups.
	OrderMessageEnable bool

	// ScanNotActiveBrokerInterval is the broker scan period in milliseconds.
	ScanNotActiveBrokerInterval int64

	// BrokerChannelExpiredTime is how long, in milliseconds, a broker may
	// stay silent before it is dropped from the route table.
	BrokerChannelExpiredTime int64
}

// NewServiceConfig returns a ServiceConfig with built-in defaults and the
// given home directory.
func NewServiceConfig(home string) *ServiceConfig {
	userHome, err := os.UserHomeDir()
	if err != nil {
		userHome = "."
	}
	return &ServiceConfig{
		Home:                        home,
		KVConfigPath:                filepath.Join(userHome, "namesrv", "kvConfig.json"),
		ConfigStorePath:             filepath.Join(userHome, "namesrv", "namesrv.properties"),
		ProductEnvName:              "center",
		ScanNotActiveBrokerInterval: 10_000,
		BrokerChannelExpiredTime:    120_000,
	}
}

// Bindings returns the binding table of the record.
func (c *ServiceConfig) Bindings() []Binding {
	return []Binding{
		{Key: HomeKey, Get: func() string { return c.Home }},
		stringField("kvConfigPath", &c.KVConfigPath),
		stringField("configStorePath", &c.ConfigStorePath),
		stringField("productEnvName", &c.ProductEnvName),
		boolField("clusterTest", &c.ClusterTest),
		boolField("orderMessageEnable", &c.OrderMessageEnable),
		int64Field("scanNotActiveBrokerInterval", &c.ScanNotActiveBrokerInterval),
		int64Field("brokerChannelExpiredTime", &c.BrokerChannelExpiredTime),
	}
}

// ScanInterval returns ScanNotActiveBrokerInterval as a duration.
func (c *ServiceConfig) ScanInterval() time.Duration {
	return time.Duration(c.ScanNotActiveBrokerInterval) * time.Millisecond
}

// BrokerExpiry returns BrokerChannelExpiredTime as a duration.
func (c *ServiceConfig) BrokerExpiry() time.Duration {
	return time.Duration(c.BrokerChannelExpiredTime) * time.Millisecond
}
