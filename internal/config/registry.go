package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/magiconair/properties"
	"golang.org/x/exp/slices"
)

// Registry keeps the configuration the process runs with: the live records
// plus every property registered at boot, including keys that matched no
// field. Thread-safe.
type Registry struct {
	all       map[string]string
	storePath string
	records   []Record
	mu        sync.RWMutex
}

// NewRegistry creates a registry over records. Updates are persisted to
// storePath.
func NewRegistry(storePath string, records ...Record) *Registry {
	return &Registry{
		all:       make(map[string]string),
		storePath: storePath,
		records:   records,
	}
}

// RegisterConfig remembers every property of props. A nil props is ignored,
// so callers can pass the result of an optional file load directly.
func (r *Registry) RegisterConfig(props *properties.Properties) *Registry {
	if props == nil {
		return r
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range props.Keys() {
		value, _ := props.Get(key)
		r.all[key] = value
	}
	return r
}

// AllConfigs returns a copy of every known property. Current record values
// win over registered properties with the same key.
func (r *Registry) AllConfigs() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot()
}

func (r *Registry) snapshot() map[string]string {
	out := make(map[string]string, len(r.all))
	for k, v := range r.all {
		out[k] = v
	}
	for _, rec := range r.records {
		for _, b := range rec.Bindings() {
			out[b.Key] = b.Get()
		}
	}
	return out
}

// View runs fn while holding the read lock, so fields of the records read
// inside fn are never observed halfway through an Update.
func (r *Registry) View(fn func()) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn()
}

// FormatString renders AllConfigs as sorted key=value lines.
func (r *Registry) FormatString() string {
	all := r.AllConfigs()
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s=%s\n", k, all[k])
	}
	return sb.String()
}

// Update applies values to the records, remembers them and persists the
// full configuration to the store path. Keys with no settable binding are
// only remembered. When any value is rejected no record is changed.
func (r *Registry) Update(values map[string]string) error {
	props := NewProperties(values)

	r.mu.Lock()
	defer r.mu.Unlock()

	var bindings []Binding
	for _, rec := range r.records {
		bindings = append(bindings, rec.Bindings()...)
	}
	if err := Apply(props, bindings); err != nil {
		return err
	}
	for k, v := range values {
		r.all[k] = v
	}
	return r.persist()
}

// persist writes the snapshot to storePath. Caller holds mu.
func (r *Registry) persist() error {
	if r.storePath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(r.storePath), 0o755); err != nil {
		return fmt.Errorf("create config store directory: %w", err)
	}

	var buf bytes.Buffer
	if _, err := NewProperties(r.snapshot()).Write(&buf, properties.UTF8); err != nil {
		return fmt.Errorf("encode config store: %w", err)
	}
	if err := os.WriteFile(r.storePath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write config store %s: %w", r.storePath, err)
	}
	return nil
}
