package config

import "github.com/spf13/viper"

const (
	// EnvPrefix prefixes every environment variable read by the name server.
	EnvPrefix = "NAMESRV"

	// HomeEnv names the required installation directory variable.
	HomeEnv = EnvPrefix + "_HOME"
)

// Environment is the part of the configuration that only the process
// environment can provide.
type Environment struct {
	// Home is the installation directory (NAMESRV_HOME).
	Home string
	// LogLevel optionally overrides the level of conf/logging.yaml (NAMESRV_LOG_LEVEL).
	LogLevel string
}

// LoadEnvironment reads the NAMESRV_* variables.
func LoadEnvironment() Environment {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	_ = v.BindEnv("home")
	_ = v.BindEnv("log_level")

	return Environment{
		Home:     v.GetString("home"),
		LogLevel: v.GetString("log_level"),
	}
}
