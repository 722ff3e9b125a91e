package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const logTimeLayout = "2006-01-02 15:04:05"

// newLogger returns a logger that writes every entry both to console and to
// the append-only file at path. The returned func closes the file.
func newLogger(console zapcore.WriteSyncer, path, level string) (*zap.Logger, func() error, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	consoleEnc := zap.NewDevelopmentEncoderConfig()
	consoleEnc.EncodeTime = zapcore.TimeEncoderOfLayout(logTimeLayout)
	consoleEnc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleEnc.CallerKey = zapcore.OmitKey

	fileEnc := consoleEnc
	fileEnc.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEnc), zapcore.Lock(console), lvl),
		zapcore.NewCore(zapcore.NewConsoleEncoder(fileEnc), zapcore.AddSync(file), lvl),
	)
	logger := zap.New(core)

	closeFn := func() error {
		_ = logger.Sync()
		return file.Close()
	}
	return logger, closeFn, nil
}
