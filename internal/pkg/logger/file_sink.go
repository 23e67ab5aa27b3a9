package logger

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// fileEncoderConfig повторяет формат старых логов загрузки: "время - УРОВЕНЬ - функция() - сообщение".
func fileEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		FunctionKey:      "func",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		ConsoleSeparator: " - ",
		EncodeTime:       zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05,000"),
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
	}
}

// WithFileSink returns a context whose logger writes to path in addition to the logger already
// carried by ctx. The returned func flushes and closes the file; it must be called once.
func WithFileSink(ctx context.Context, name, path string, level zapcore.Level) (context.Context, func() error, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return ctx, nil, fmt.Errorf("open log file %s: %w", path, err)
	}

	fileCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(fileEncoderConfig()),
		zapcore.Lock(f),
		level,
	)

	base := FromContext(ctx)
	l := zap.New(zapcore.NewTee(base.Core(), fileCore), zap.AddCaller())
	if name != "" {
		l = l.Named(name)
	}

	closeFn := func() error {
		_ = l.Sync()
		return f.Close()
	}

	return ToContext(ctx, l), closeFn, nil
}
