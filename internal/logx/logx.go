// Package logx builds the zap logger used for diagnostic output. The backup
// engine swallows most errors on purpose, so a debug logger is the only way
// to see what a tick actually did.
package logx

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// GetLogger returns a logger at the given level. An empty level or "off"
// disables logging entirely.
func GetLogger(logLevel string) (*zap.Logger, error) {
	if logLevel == "" || logLevel == "off" {
		return zap.NewNop(), nil
	}
	var lvl zapcore.Level
	if err := lvl.Set(logLevel); err != nil {
		return nil, err
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
