package utils

import (
	"log"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Log *zap.SugaredLogger

// InitLogger monta o logger global. Encoding e nível vêm do ambiente para
// não depender do LoadConfig ter rodado antes.
func InitLogger(level, encoding string) {
	lvl := zapcore.InfoLevel
	if err := lvl.Set(strings.ToLower(level)); err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	if encoding == "console" {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	Log = logger.Sugar()
}

func init() {
	// Fallback para testes e utilitários que não chamam InitLogger
	Log = zap.NewNop().Sugar()
}
