package bootstrap

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/namesrv/internal/config"
)

func writeProperties(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "namesrv.properties")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func parse(t *testing.T, args ...string) *Options {
	t.Helper()
	opts, exit, err := ParseOptions(args, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, exit)
	return opts
}

var testEnv = config.Environment{Home: "/opt/svc"}

func TestResolveDefaults(t *testing.T) {
	var out bytes.Buffer
	res, err := Resolve(parse(t), testEnv, &out)
	require.NoError(t, err)

	assert.Equal(t, config.DefaultListenPort, res.Transport.ListenPort)
	assert.Equal(t, "/opt/svc", res.Service.Home)
	assert.Nil(t, res.Properties)
	assert.Empty(t, out.String())
}

func TestResolveFile(t *testing.T) {
	path := writeProperties(t,
		"listenPort=10911",
		"orderMessageEnable=true",
		"unknownKey=kept",
		"namesrvHome=/somewhere/else",
	)

	var out bytes.Buffer
	res, err := Resolve(parse(t, "-c", path), testEnv, &out)
	require.NoError(t, err)

	assert.Equal(t, 10911, res.Transport.ListenPort)
	assert.True(t, res.Service.OrderMessageEnable)
	assert.Equal(t, "/opt/svc", res.Service.Home, "home only comes from the environment")
	assert.Equal(t, path, res.Service.ConfigStorePath)
	assert.Equal(t, 8, res.Transport.ServerWorkerThreads, "unmatched fields keep defaults")

	v, ok := res.Properties.Get("unknownKey")
	assert.True(t, ok)
	assert.Equal(t, "kept", v)

	assert.Equal(t, "load config properties file OK, "+path+"\n", out.String())
}

func TestResolveCommandLineWins(t *testing.T) {
	path := writeProperties(t, "productEnvName=fromFile", "kvConfigPath=/file/kv.json")

	res, err := Resolve(parse(t, "-c", path, "--productEnvName", "fromCli"), testEnv, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, "fromCli", res.Service.ProductEnvName)
	assert.Equal(t, "/file/kv.json", res.Service.KVConfigPath)
}

func TestResolveErrors(t *testing.T) {
	badFile := writeProperties(t, "scanNotActiveBrokerInterval=soon")
	badTransport := writeProperties(t, "listenPort=high")

	tests := []struct {
		name string
		args []string
		kind Kind
	}{
		{"missing file", []string{"-c", filepath.Join(t.TempDir(), "absent.properties")}, ConfigFileError},
		{"empty file name", []string{"-c", ""}, ConfigFileError},
		{"bad service value in file", []string{"-c", badFile}, ConfigFileError},
		{"bad transport value in file", []string{"-c", badTransport}, ConfigFileError},
		{"bad command line value", []string{"--brokerChannelExpiredTime", "never"}, ArgumentError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			res, err := Resolve(parse(t, tt.args...), testEnv, &out)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.Equal(t, tt.kind, kindOf(err))
			assert.Equal(t, ExitFailure, ExitCodeOf(err))
			assert.NotContains(t, out.String(), "load config properties file OK")
		})
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(config.NewServiceConfig("/opt/svc")))

	err := Validate(config.NewServiceConfig(""))
	require.Error(t, err)
	assert.Equal(t, EnvironmentError, kindOf(err))
	assert.Equal(t, ExitMissingHome, ExitCodeOf(err))
}

func TestReport(t *testing.T) {
	svc := config.NewServiceConfig("/opt/svc")
	tr := config.NewTransportConfig()

	var out bytes.Buffer
	require.NoError(t, Report(&out, svc, tr))

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	assert.Len(t, lines, len(svc.Bindings())+len(tr.Bindings()))
	assert.Equal(t, "namesrvHome=/opt/svc", lines[0])
	assert.Contains(t, lines, "listenPort=9876")
}
