package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/magiconair/properties"
)

// Binding ties a property key to one field of a configuration record.
// Set is nil for fields that are reported but never taken from properties.
type Binding struct {
	Set func(value string) error
	Get func() string
	Key string
}

// Settable reports whether the binding accepts values from properties.
func (b Binding) Settable() bool {
	return b.Set != nil
}

// Record is a configuration record with an explicit binding table.
// The order of the returned bindings is the order used when printing.
type Record interface {
	Bindings() []Binding
}

// Apply copies every property whose key matches a settable binding onto the
// record behind bindings. Missing keys leave the field untouched and keys
// without a binding are ignored. A nil props is a no-op.
//
// Apply is all or nothing: when a value fails to convert, every field set
// by this call is restored before the error is returned.
func Apply(props *properties.Properties, bindings []Binding) error {
	if props == nil {
		return nil
	}
	var undo []func()
	for _, b := range bindings {
		if !b.Settable() {
			continue
		}
		value, ok := props.Get(b.Key)
		if !ok {
			continue
		}
		prev, set := b.Get(), b.Set
		if err := set(value); err != nil {
			for i := len(undo) - 1; i >= 0; i-- {
				undo[i]()
			}
			return fmt.Errorf("invalid value %q for %s: %w", value, b.Key, err)
		}
		undo = append(undo, func() { _ = set(prev) })
	}
	return nil
}

func stringField(key string, field *string) Binding {
	return Binding{
		Key: key,
		Set: func(v string) error {
			*field = v
			return nil
		},
		Get: func() string { return *field },
	}
}

func intField(key string, field *int) Binding {
	return Binding{
		Key: key,
		Set: func(v string) error {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return err
			}
			*field = n
			return nil
		},
		Get: func() string { return strconv.Itoa(*field) },
	}
}

func int64Field(key string, field *int64) Binding {
	return Binding{
		Key: key,
		Set: func(v string) error {
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return err
			}
			*field = n
			return nil
		},
		Get: func() string { return strconv.FormatInt(*field, 10) },
	}
}

func boolField(key string, field *bool) Binding {
	return Binding{
		Key: key,
		Set: func(v string) error {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return err
			}
			*field = b
			return nil
		},
		Get: func() string { return strconv.FormatBool(*field) },
	}
}
