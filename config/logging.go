package config

import (
	"go.uber.org/zap/zapcore"

	"github.com/attestlabs/go-attest/log"
)

const defaultLoggingLevel = zapcore.InfoLevel

// LoggerConfig holds the encoder and the logging level of each module.
type LoggerConfig struct {
	Encoder string `mapstructure:"log-encoder"`

	AppLoggerLevel         string `mapstructure:"app"`
	DatabaseLoggerLevel    string `mapstructure:"database"`
	GuardiansLoggerLevel   string `mapstructure:"guardians"`
	VerifierLoggerLevel    string `mapstructure:"verifier"`
	LedgerLoggerLevel      string `mapstructure:"ledger"`
	BridgeLoggerLevel      string `mapstructure:"bridge"`
	AccumulatorLoggerLevel string `mapstructure:"accumulator"`
}

// DefaultLoggingConfig logs every module at info level on the console.
func DefaultLoggingConfig() LoggerConfig {
	level := defaultLoggingLevel.String()
	return LoggerConfig{
		Encoder:                log.ConsoleEncoder,
		AppLoggerLevel:         level,
		DatabaseLoggerLevel:    zapcore.WarnLevel.String(),
		GuardiansLoggerLevel:   level,
		VerifierLoggerLevel:    level,
		LedgerLoggerLevel:      level,
		BridgeLoggerLevel:      level,
		AccumulatorLoggerLevel: level,
	}
}
