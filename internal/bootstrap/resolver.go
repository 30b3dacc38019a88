package bootstrap

import (
	"fmt"
	"io"

	"github.com/magiconair/properties"

	"github.com/dreamware/namesrv/internal/config"
)

// HomeRemediation is printed when NAMESRV_HOME is missing.
const HomeRemediation = "Please set the " + config.HomeEnv +
	" variable in your environment to match the location of the name server installation"

// Resolution is the outcome of configuration resolution.
type Resolution struct {
	Service   *config.ServiceConfig
	Transport *config.TransportConfig

	// Properties holds every key of the config file, including keys that
	// matched no field. It is nil when no file was given.
	Properties *properties.Properties
}

// Resolve builds both configuration records. Built-in defaults come first,
// then the properties file named by -c, then command line overrides, so the
// command line wins on collision. Only the home directory is taken from env.
//
// A supplied -c is always read, even when its value is empty. The file is
// read once. Read failures and unconvertible values in the file are
// ConfigFileErrors; unconvertible command line values are ArgumentErrors.
func Resolve(opts *Options, env config.Environment, out io.Writer) (*Resolution, error) {
	res := &Resolution{
		Service:   config.NewServiceConfig(env.Home),
		Transport: config.NewTransportConfig(),
	}

	if path, ok := opts.Value(OptConfigFile); ok {
		props, err := config.LoadProperties(path)
		if err != nil {
			return nil, newError(ConfigFileError, err)
		}
		if err := config.Apply(props, res.Service.Bindings()); err != nil {
			return nil, errorf(ConfigFileError, "%s: %w", path, err)
		}
		if err := config.Apply(props, res.Transport.Bindings()); err != nil {
			return nil, errorf(ConfigFileError, "%s: %w", path, err)
		}
		res.Service.ConfigStorePath = path
		res.Properties = props
		fmt.Fprintf(out, "load config properties file OK, %s\n", path)
	}

	if err := config.Apply(opts.Properties(), res.Service.Bindings()); err != nil {
		return nil, errorf(ArgumentError, "command line: %w", err)
	}
	return res, nil
}

// Validate checks the resolved service configuration.
func Validate(svc *config.ServiceConfig) error {
	if svc.Home == "" {
		return errorf(EnvironmentError, "%s is not set", config.HomeEnv)
	}
	return nil
}
