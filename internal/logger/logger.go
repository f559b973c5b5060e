package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type zapLogger struct {
	sugared *zap.SugaredLogger
	base    *zap.Logger
}

// New builds a logger that writes to both the console and a rotated log file.
// The file sink captures debug output; the console stays at info and above.
func New(logPath string, debug bool) Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleLevel := zapcore.InfoLevel
	if debug {
		consoleLevel = zapcore.DebugLevel
	}

	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.Lock(os.Stderr),
			consoleLevel,
		),
	}

	if logPath != "" {
		fileSink := zapcore.AddSync(&lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     30, // days
		})
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encCfg),
			fileSink,
			zapcore.DebugLevel,
		))
	}

	base := zap.New(zapcore.NewTee(cores...))
	return &zapLogger{base: base, sugared: base.Sugar()}
}

// NewNop returns a logger that discards everything, for tests.
func NewNop() Logger {
	base := zap.NewNop()
	return &zapLogger{base: base, sugared: base.Sugar()}
}

func (l *zapLogger) Info(args ...any)                  { l.sugared.Info(args...) }
func (l *zapLogger) Infof(format string, args ...any)  { l.sugared.Infof(format, args...) }
func (l *zapLogger) Warn(args ...any)                  { l.sugared.Warn(args...) }
func (l *zapLogger) Warnf(format string, args ...any)  { l.sugared.Warnf(format, args...) }
func (l *zapLogger) Error(args ...any)                 { l.sugared.Error(args...) }
func (l *zapLogger) Errorf(format string, args ...any) { l.sugared.Errorf(format, args...) }
func (l *zapLogger) Debug(args ...any)                 { l.sugared.Debug(args...) }
func (l *zapLogger) Debugf(format string, args ...any) { l.sugared.Debugf(format, args...) }

func (l *zapLogger) Close() error {
	// Sync errors on stderr are expected on some platforms and not actionable.
	_ = l.base.Sync()
	return nil
}
