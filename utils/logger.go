package utils

import (
	"go.uber.org/zap"
)

// NewLogger builds the process logger. Development mode logs human readable
// lines at debug level; everything else logs JSON at info level.
func NewLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	return cfg.Build()
}
