package kvconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/dreamware/namesrv/internal/metrics"
)

// ErrKeyNotFound is returned when a namespace or key does not exist.
var ErrKeyNotFound = errors.New("kv config not found")

// Stats contains statistics about the store.
type Stats struct {
	Namespaces int `json:"namespaces"`
	Keys       int `json:"keys"`
}

// Manager is a namespaced key/value configuration store backed by a JSON
// file. Every mutation is written through to the file.
// Thread-safe: all methods may be called concurrently.
type Manager struct {
	table  map[string]map[string]string // namespace -> key -> value
	logger *zap.SugaredLogger
	path   string
	mu     sync.RWMutex // Protects table and serializes file writes
}

// snapshot is the on-disk layout.
type snapshot struct {
	ConfigTable map[string]map[string]string `json:"configTable"`
}

// NewManager creates an empty manager persisted to path.
func NewManager(path string, logger *zap.Logger) *Manager {
	return &Manager{
		table:  make(map[string]map[string]string),
		logger: logger.Sugar(),
		path:   path,
	}
}

// Path returns the file the manager persists to.
func (m *Manager) Path() string {
	return m.path
}

// Load replaces the in-memory table with the content of the file.
// A missing or empty file leaves the table empty and is not an error.
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.path)
	if errors.Is(err, fs.ErrNotExist) {
		m.logger.Infow("KV config file not found, starting empty", "path", m.path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read kv config %s: %w", m.path, err)
	}

	var snap snapshot
	if len(data) > 0 {
		if err := json.Unmarshal(data, &snap); err != nil {
			return fmt.Errorf("decode kv config %s: %w", m.path, err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.table = make(map[string]map[string]string, len(snap.ConfigTable))
	for ns, kv := range snap.ConfigTable {
		if len(kv) == 0 {
			continue
		}
		m.table[ns] = kv
	}
	m.updateGauge()
	m.logger.Infow("Loaded KV config", "path", m.path, "namespaces", len(m.table))
	return nil
}

// Put stores value under namespace/key and persists the table.
// Overwrites any existing value.
func (m *Manager) Put(namespace, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kv, ok := m.table[namespace]
	if !ok {
		kv = make(map[string]string)
		m.table[namespace] = kv
		m.logger.Infow("KV config namespace created", "namespace", namespace)
	}
	prev, existed := kv[key]
	kv[key] = value
	if existed {
		m.logger.Infow("KV config updated", "namespace", namespace, "key", key, "old", prev, "value", value)
	} else {
		m.logger.Infow("KV config created", "namespace", namespace, "key", key, "value", value)
	}
	m.updateGauge()
	return m.persist()
}

// Get returns the value under namespace/key.
// Returns ErrKeyNotFound if either does not exist.
func (m *Manager) Get(namespace, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.table[namespace][key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return value, nil
}

// Delete removes namespace/key and persists the table. Deleting a missing
// key is a no-op. A namespace left empty is dropped.
func (m *Manager) Delete(namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kv, ok := m.table[namespace]
	if !ok {
		return nil
	}
	if _, ok := kv[key]; !ok {
		return nil
	}
	delete(kv, key)
	if len(kv) == 0 {
		delete(m.table, namespace)
	}
	m.logger.Infow("KV config deleted", "namespace", namespace, "key", key)
	m.updateGauge()
	return m.persist()
}

// Namespace returns a copy of every key/value in namespace.
// Returns ErrKeyNotFound if the namespace does not exist.
func (m *Manager) Namespace(namespace string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	kv, ok := m.table[namespace]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make(map[string]string, len(kv))
	for k, v := range kv {
		out[k] = v
	}
	return out, nil
}

// Namespaces returns the sorted namespace names.
func (m *Manager) Namespaces() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.table))
	for ns := range m.table {
		names = append(names, ns)
	}
	slices.Sort(names)
	return names
}

// Stats returns store statistics.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats()
}

func (m *Manager) stats() Stats {
	s := Stats{Namespaces: len(m.table)}
	for _, kv := range m.table {
		s.Keys += len(kv)
	}
	return s
}

// Dump logs every entry of the table.
func (m *Manager) Dump() {
	m.mu.RLock()
	defer m.mu.RUnlock()

	m.logger.Infow("KV config table", "namespaces", len(m.table))
	for ns, kv := range m.table {
		for k, v := range kv {
			m.logger.Infow("KV config entry", "namespace", ns, "key", k, "value", v)
		}
	}
}

// Persist writes the table to the file. Mutations are already written
// through; this is the final flush on shutdown.
func (m *Manager) Persist() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.persist()
}

// persist writes a temporary file and renames it over the target.
// Caller holds mu.
func (m *Manager) persist() error {
	data, err := json.MarshalIndent(snapshot{ConfigTable: m.table}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode kv config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("create kv config directory: %w", err)
	}
	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write kv config %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("replace kv config %s: %w", m.path, err)
	}
	return nil
}

func (m *Manager) updateGauge() {
	metrics.KVConfigEntries.Set(float64(m.stats().Keys))
}
