package bootstrap

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/dreamware/namesrv/internal/config"
)

// Report writes every field of records as name=value, one per line, in
// binding order.
func Report(w io.Writer, records ...config.Record) error {
	for _, rec := range records {
		for _, b := range rec.Bindings() {
			if _, err := fmt.Fprintf(w, "%s=%s\n", b.Key, b.Get()); err != nil {
				return err
			}
		}
	}
	return nil
}

// LogConfig logs every field of records at info level.
func LogConfig(logger *zap.SugaredLogger, records ...config.Record) {
	for _, rec := range records {
		for _, b := range rec.Bindings() {
			logger.Infow("Config item", "key", b.Key, "value", b.Get())
		}
	}
}
