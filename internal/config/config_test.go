package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestDefaults verifies the built-in defaults of both records.
func TestDefaults(t *testing.T) {
	svc := NewServiceConfig("/opt/svc")
	tr := NewTransportConfig()

	assert.Equal(t, "/opt/svc", svc.Home)
	assert.Equal(t, "center", svc.ProductEnvName)
	assert.False(t, svc.OrderMessageEnable)
	assert.Equal(t, 10*time.Second, svc.ScanInterval())
	assert.Equal(t, 2*time.Minute, svc.BrokerExpiry())
	assert.True(t, strings.HasSuffix(svc.KVConfigPath, filepath.Join("namesrv", "kvConfig.json")))

	assert.Equal(t, 9876, tr.ListenPort)
	assert.Equal(t, ":9876", tr.Addr())
	assert.Equal(t, 5*time.Second, tr.ShutdownTimeout())
	assert.Equal(t, 120*time.Second, tr.IdleTimeout())
}

// TestApply covers matching, unknown and malformed keys.
func TestApply(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]string
		wantErr bool
		check   func(t *testing.T, svc *ServiceConfig, tr *TransportConfig)
	}{
		{
			name:   "matching keys are bound",
			values: map[string]string{"listenPort": "10911", "productEnvName": "test", "orderMessageEnable": "true"},
			check: func(t *testing.T, svc *ServiceConfig, tr *TransportConfig) {
				assert.Equal(t, 10911, tr.ListenPort)
				assert.Equal(t, "test", svc.ProductEnvName)
				assert.True(t, svc.OrderMessageEnable)
			},
		},
		{
			name:   "unknown keys are ignored",
			values: map[string]string{"someFutureKey": "x"},
			check: func(t *testing.T, svc *ServiceConfig, tr *TransportConfig) {
				assert.Equal(t, NewTransportConfig(), tr)
				assert.Equal(t, "center", svc.ProductEnvName)
			},
		},
		{
			name:   "home cannot be set",
			values: map[string]string{HomeKey: "/elsewhere"},
			check: func(t *testing.T, svc *ServiceConfig, tr *TransportConfig) {
				assert.Equal(t, "/opt/svc", svc.Home)
			},
		},
		{
			name:    "malformed integer",
			values:  map[string]string{"listenPort": "abc"},
			wantErr: true,
		},
		{
			name:    "malformed boolean",
			values:  map[string]string{"clusterTest": "maybe"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewServiceConfig("/opt/svc")
			tr := NewTransportConfig()
			props := NewProperties(tt.values)

			errSvc := Apply(props, svc.Bindings())
			errTr := Apply(props, tr.Bindings())
			if tt.wantErr {
				assert.True(t, errSvc != nil || errTr != nil)
				return
			}
			require.NoError(t, errSvc)
			require.NoError(t, errTr)
			tt.check(t, svc, tr)
		})
	}
}

func TestApplyNilProperties(t *testing.T) {
	tr := NewTransportConfig()
	assert.NoError(t, Apply(nil, tr.Bindings()))
	assert.Equal(t, NewTransportConfig(), tr)
}

func TestApplyRestoresOnError(t *testing.T) {
	svc := NewServiceConfig("/opt/svc")
	props := NewProperties(map[string]string{
		"productEnvName":              "test",
		"clusterTest":                 "true",
		"scanNotActiveBrokerInterval": "abc",
	})

	err := Apply(props, svc.Bindings())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scanNotActiveBrokerInterval")
	assert.Equal(t, NewServiceConfig("/opt/svc"), svc)
}

func TestLoadProperties(t *testing.T) {
	path := writeFile(t, "namesrv.properties", strings.Join([]string{
		"# comment",
		"listenPort=19876",
		"kvConfigPath=/data/${user}/kv.json",
		"unknownKey = kept",
		"",
	}, "\n"))

	props, err := LoadProperties(path)
	require.NoError(t, err)

	v, ok := props.Get("listenPort")
	assert.True(t, ok)
	assert.Equal(t, "19876", v)

	v, _ = props.Get("kvConfigPath")
	assert.Equal(t, "/data/${user}/kv.json", v, "values are not expanded")

	v, _ = props.Get("unknownKey")
	assert.Equal(t, "kept", v)
	assert.Len(t, props.Keys(), 3)
}

func TestLoadPropertiesMissingFile(t *testing.T) {
	_, err := LoadProperties(filepath.Join(t.TempDir(), "missing.properties"))
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	svc := NewServiceConfig("/opt/svc")
	tr := NewTransportConfig()
	storePath := filepath.Join(t.TempDir(), "store", "namesrv.properties")
	reg := NewRegistry(storePath, svc, tr)

	t.Run("nil properties are ignored", func(t *testing.T) {
		reg.RegisterConfig(nil)
		all := reg.AllConfigs()
		assert.Equal(t, "9876", all["listenPort"])
		assert.Equal(t, "/opt/svc", all[HomeKey])
	})

	t.Run("unmatched keys are remembered", func(t *testing.T) {
		reg.RegisterConfig(NewProperties(map[string]string{
			"vendorKey":  "v1",
			"listenPort": "1",
		}))
		all := reg.AllConfigs()
		assert.Equal(t, "v1", all["vendorKey"])
		assert.Equal(t, "9876", all["listenPort"], "live record value wins")
	})

	t.Run("format string is sorted", func(t *testing.T) {
		lines := strings.Split(strings.TrimSpace(reg.FormatString()), "\n")
		require.NotEmpty(t, lines)
		for i := 1; i < len(lines); i++ {
			assert.LessOrEqual(t, lines[i-1], lines[i])
		}
		assert.Contains(t, lines, "vendorKey=v1")
	})

	t.Run("update applies and persists", func(t *testing.T) {
		err := reg.Update(map[string]string{"productEnvName": "prod", "extra": "1"})
		require.NoError(t, err)
		assert.Equal(t, "prod", svc.ProductEnvName)

		props, err := LoadProperties(storePath)
		require.NoError(t, err)
		v, _ := props.Get("productEnvName")
		assert.Equal(t, "prod", v)
		v, _ = props.Get("extra")
		assert.Equal(t, "1", v)
		v, _ = props.Get("vendorKey")
		assert.Equal(t, "v1", v)
	})

	t.Run("update rejects malformed values", func(t *testing.T) {
		err := reg.Update(map[string]string{"listenPort": "nope"})
		assert.Error(t, err)
		assert.Equal(t, 9876, tr.ListenPort)
	})

	t.Run("rejected update changes nothing", func(t *testing.T) {
		before, err := os.ReadFile(storePath)
		require.NoError(t, err)

		err = reg.Update(map[string]string{
			"clusterTest":    "true",
			"productEnvName": "staging",
			"other":          "2",
			"listenPort":     "nope",
		})
		require.Error(t, err)

		assert.False(t, svc.ClusterTest)
		assert.Equal(t, "prod", svc.ProductEnvName)
		all := reg.AllConfigs()
		assert.Equal(t, "false", all["clusterTest"])
		assert.NotContains(t, all, "other")

		after, err := os.ReadFile(storePath)
		require.NoError(t, err)
		assert.Equal(t, string(before), string(after))
	})

	t.Run("view sees a consistent record", func(t *testing.T) {
		var env string
		reg.View(func() { env = svc.ProductEnvName })
		assert.Equal(t, "prod", env)
	})
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv(HomeEnv, "/opt/svc")
	t.Setenv("NAMESRV_LOG_LEVEL", "debug")

	env := LoadEnvironment()
	assert.Equal(t, "/opt/svc", env.Home)
	assert.Equal(t, "debug", env.LogLevel)
}

func TestLoadEnvironmentUnset(t *testing.T) {
	t.Setenv(HomeEnv, "")
	env := LoadEnvironment()
	assert.Empty(t, env.Home)
}
