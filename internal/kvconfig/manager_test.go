package kvconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(filepath.Join(t.TempDir(), "namesrv", "kvConfig.json"), zaptest.NewLogger(t))
}

func TestManager(t *testing.T) {
	t.Run("new manager is empty", func(t *testing.T) {
		m := newTestManager(t)

		_, err := m.Get("ns", "k")
		assert.ErrorIs(t, err, ErrKeyNotFound)
		_, err = m.Namespace("ns")
		assert.ErrorIs(t, err, ErrKeyNotFound)
		assert.Empty(t, m.Namespaces())
		assert.Equal(t, Stats{}, m.Stats())
	})

	t.Run("put and get", func(t *testing.T) {
		m := newTestManager(t)
		require.NoError(t, m.Put("ORDER_TOPIC_CONFIG", "TopicTest", "broker-a:4"))

		v, err := m.Get("ORDER_TOPIC_CONFIG", "TopicTest")
		require.NoError(t, err)
		assert.Equal(t, "broker-a:4", v)

		_, err = m.Get("ORDER_TOPIC_CONFIG", "Other")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("overwrite", func(t *testing.T) {
		m := newTestManager(t)
		require.NoError(t, m.Put("ns", "k", "v1"))
		require.NoError(t, m.Put("ns", "k", "v2"))

		v, err := m.Get("ns", "k")
		require.NoError(t, err)
		assert.Equal(t, "v2", v)
		assert.Equal(t, Stats{Namespaces: 1, Keys: 1}, m.Stats())
	})

	t.Run("delete drops empty namespace", func(t *testing.T) {
		m := newTestManager(t)
		require.NoError(t, m.Put("ns", "a", "1"))
		require.NoError(t, m.Put("ns", "b", "2"))

		require.NoError(t, m.Delete("ns", "a"))
		assert.Equal(t, []string{"ns"}, m.Namespaces())

		require.NoError(t, m.Delete("ns", "b"))
		assert.Empty(t, m.Namespaces())

		assert.NoError(t, m.Delete("ns", "b"), "delete is idempotent")
		assert.NoError(t, m.Delete("missing", "x"))
	})

	t.Run("namespace returns a copy", func(t *testing.T) {
		m := newTestManager(t)
		require.NoError(t, m.Put("ns", "k", "v"))

		kv, err := m.Namespace("ns")
		require.NoError(t, err)
		kv["k"] = "changed"
		kv["new"] = "x"

		v, _ := m.Get("ns", "k")
		assert.Equal(t, "v", v)
		_, err = m.Get("ns", "new")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})
}

func TestManagerPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv", "kvConfig.json")
	m := NewManager(path, zaptest.NewLogger(t))
	require.NoError(t, m.Put("ORDER_TOPIC_CONFIG", "TopicTest", "broker-a:4"))
	require.NoError(t, m.Put("other", "k", "v"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk map[string]map[string]map[string]string
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, "broker-a:4", onDisk["configTable"]["ORDER_TOPIC_CONFIG"]["TopicTest"])

	reloaded := NewManager(path, zaptest.NewLogger(t))
	require.NoError(t, reloaded.Load())
	assert.Equal(t, []string{"ORDER_TOPIC_CONFIG", "other"}, reloaded.Namespaces())
	v, err := reloaded.Get("other", "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file is renamed away")
}

func TestManagerPersistFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv", "kvConfig.json")
	m := NewManager(path, zaptest.NewLogger(t))
	require.NoError(t, m.Load())

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err), "loading a missing file writes nothing")

	require.NoError(t, m.Persist())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"configTable":{}}`, string(data))
}

func TestManagerLoad(t *testing.T) {
	tests := []struct {
		name     string
		content  *string
		wantErr  bool
		wantKeys int
	}{
		{name: "missing file", content: nil},
		{name: "empty file", content: ptr("")},
		{name: "valid file", content: ptr(`{"configTable":{"ns":{"a":"1","b":"2"},"empty":{}}}`), wantKeys: 2},
		{name: "corrupt file", content: ptr(`{"configTable":`), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "kvConfig.json")
			if tt.content != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tt.content), 0o644))
			}
			m := NewManager(path, zaptest.NewLogger(t))

			err := m.Load()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKeys, m.Stats().Keys)
			assert.NotContains(t, m.Namespaces(), "empty")
		})
	}
}

func TestManagerConcurrentAccess(t *testing.T) {
	m := newTestManager(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i)
			assert.NoError(t, m.Put("ns", key, "v"))
			_, _ = m.Get("ns", key)
			_ = m.Namespaces()
			m.Dump()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, Stats{Namespaces: 1, Keys: 10}, m.Stats())
}

func ptr(s string) *string { return &s }
