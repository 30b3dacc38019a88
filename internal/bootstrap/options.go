package bootstrap

import (
	"io"

	"github.com/magiconair/properties"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dreamware/namesrv/internal/config"
)

// Long option names.
const (
	OptConfigFile      = "configFile"
	OptPrintConfigItem = "printConfigItem"
	OptNamesrvAddr     = "namesrvAddr"
	OptHelp            = "help"
)

// Options are the command line options that were actually supplied. The
// value is built once by ParseOptions and never modified afterwards.
type Options struct {
	values          map[string]string
	ConfigFile      string
	PrintConfigItem bool
}

// Value returns the raw value of the option with the given long name.
func (o *Options) Value(name string) (string, bool) {
	v, ok := o.values[name]
	return v, ok
}

// Properties converts the supplied options into a property set keyed by
// long option name.
func (o *Options) Properties() *properties.Properties {
	return config.NewProperties(o.values)
}

// newCommand builds the command shell. The caller owns parsing.
func newCommand(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "namesrv",
		Short:         "Start the name server",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.SetErr(out)

	flags := cmd.Flags()
	flags.SortFlags = false
	flags.StringP(OptConfigFile, "c", "", "Name server config properties file")
	flags.BoolP(OptPrintConfigItem, "p", false, "Print all config items")
	flags.StringP(OptNamesrvAddr, "n", "", "Name server address list, eg: '192.168.0.1:9876;192.168.0.2:9876'")
	flags.BoolP(OptHelp, "h", false, "Print help")

	for _, b := range config.NewServiceConfig("").Bindings() {
		if !b.Settable() {
			continue
		}
		flags.String(b.Key, "", "Override "+b.Key)
	}
	return cmd
}

// ParseOptions parses args against the supported options. exit is true when the
// help text was requested and printed to out. On a parse error the usage
// text is printed to out and the error is returned.
func ParseOptions(args []string, out io.Writer) (opts *Options, exit bool, err error) {
	if args == nil {
		args = []string{}
	}
	cmd := newCommand(out)

	ran := false
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		ran = true
		opts = collect(cmd.Flags())
		return nil
	}
	cmd.SetArgs(args)

	if err := cmd.Execute(); err != nil {
		_ = cmd.Usage()
		return nil, false, err
	}
	if !ran {
		return nil, true, nil
	}
	return opts, false, nil
}

func collect(flags *pflag.FlagSet) *Options {
	opts := &Options{values: make(map[string]string)}
	flags.Visit(func(f *pflag.Flag) {
		opts.values[f.Name] = f.Value.String()
	})
	opts.ConfigFile, _ = flags.GetString(OptConfigFile)
	opts.PrintConfigItem, _ = flags.GetBool(OptPrintConfigItem)
	return opts
}
