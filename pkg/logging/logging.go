package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

func SetupLogger() error {
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") != "" {
		err := logLevel.UnmarshalText([]byte(os.Getenv("LOG_LEVEL")))
		if err != nil {
			slog.Error("Error parsing log level", "error", err)
			return err
		}
	}

	var writer io.Writer = os.Stderr
	if logPath := os.Getenv("LOG_FILE_PATH"); logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
			return err
		}
		rotating := &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    20,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		}
		writer = io.MultiWriter(os.Stderr, rotating)
	}

	logger := slog.New(slog.NewTextHandler(writer, &slog.HandlerOptions{Level: &logLevel}))
	slog.SetDefault(logger)
	return nil
}
