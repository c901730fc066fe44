package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	level  = zap.NewAtomicLevelAt(zap.InfoLevel)
	logger = newLogger(os.Stderr)
)

func newLogger(w zapcore.WriteSyncer) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(w), level)
	return zap.New(core)
}

// SetLevel 设置日志级别，name为debug/info/warn/error
func SetLevel(name string) (err error) {
	var l zapcore.Level
	if err = l.UnmarshalText([]byte(name)); err != nil {
		return
	}
	level.SetLevel(l)
	return
}

// SetOutput 替换日志输出（测试用）
func SetOutput(w zapcore.WriteSyncer) {
	logger = newLogger(w)
}

func Debug(msg string, fields ...zap.Field) {
	logger.Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	logger.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	logger.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	logger.Error(msg, fields...)
}

func Sync() error {
	return logger.Sync()
}
