package logging

import (
	"fmt"
	"os"

	zaplogfmt "github.com/sykesm/zap-logfmt"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger 定义日志记录器接口
type Logger interface {
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
	Debug(msg string, fields ...interface{})
}

// Config 日志配置
type Config struct {
	Level  string // "debug", "info", "warn", "error"
	Format string // "json", "logfmt", "text"
	Output string // "stdout", "stderr", or file path
}

// ZapLogger 基于 zap 的日志记录器实现
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewLogger 创建新的日志记录器
func NewLogger(cfg *Config) (*ZapLogger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	encoder, err := newEncoder(cfg.Format)
	if err != nil {
		return nil, err
	}

	ws, err := openOutput(cfg.Output)
	if err != nil {
		return nil, err
	}

	return NewWithCore(zapcore.NewCore(encoder, ws, level)), nil
}

// NewWithCore 从现成的 core 创建日志记录器，测试中用于捕获输出
func NewWithCore(core zapcore.Core) *ZapLogger {
	return &ZapLogger{
		sugar: zap.New(core).Sugar(),
	}
}

// parseLevel 解析日志级别字符串，空串取 info
func parseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	return zapcore.ParseLevel(s)
}

// newEncoder 按格式创建编码器
func newEncoder(format string) (zapcore.Encoder, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	switch format {
	case "json", "":
		return zapcore.NewJSONEncoder(encoderConfig), nil
	case "logfmt":
		return zaplogfmt.NewEncoder(encoderConfig), nil
	case "text":
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(encoderConfig), nil
	default:
		return nil, fmt.Errorf("unknown log format: %s", format)
	}
}

// openOutput 打开日志输出目标
func openOutput(output string) (zapcore.WriteSyncer, error) {
	switch output {
	case "stdout", "":
		return zapcore.Lock(os.Stdout), nil
	case "stderr":
		return zapcore.Lock(os.Stderr), nil
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		return zapcore.Lock(f), nil
	}
}

// Debug 记录调试级别日志
func (l *ZapLogger) Debug(msg string, fields ...interface{}) {
	l.sugar.Debugw(msg, fields...)
}

// Info 记录信息级别日志
func (l *ZapLogger) Info(msg string, fields ...interface{}) {
	l.sugar.Infow(msg, fields...)
}

// Warn 记录警告级别日志
func (l *ZapLogger) Warn(msg string, fields ...interface{}) {
	l.sugar.Warnw(msg, fields...)
}

// Error 记录错误级别日志
func (l *ZapLogger) Error(msg string, fields ...interface{}) {
	l.sugar.Errorw(msg, fields...)
}

// Sync 刷新缓冲的日志
func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}
