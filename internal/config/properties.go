package config

import (
	"fmt"

	"github.com/magiconair/properties"
	"golang.org/x/exp/slices"
)

// LoadProperties reads a flat key=value properties file. Values are kept
// verbatim: ${...} references are not expanded.
func LoadProperties(path string) (*properties.Properties, error) {
	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	props, err := loader.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load properties %s: %w", path, err)
	}
	return props, nil
}

// NewProperties builds a properties set from a map. Keys are inserted in
// sorted order so the result is deterministic.
func NewProperties(values map[string]string) *properties.Properties {
	props := properties.NewProperties()
	props.DisableExpansion = true
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		props.MustSet(k, values[k])
	}
	return props
}
