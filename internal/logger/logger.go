package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// Log is the global logger instance
	Log *zap.Logger
)

// FileOptions controls rotation of the optional log file
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Init initializes the logger with the given log level.
// When file.Path is set, entries are written to stdout and to a rotated file.
func Init(level string, file FileOptions) error {
	sinks := []zapcore.WriteSyncer{zapcore.Lock(os.Stdout)}
	if file.Path != "" {
		sinks = append(sinks, rotated(file))
	}
	return build(level, sinks)
}

// InitFile initializes a logger that never writes to stdout. Entries go to the rotated
// file, or to stderr when file.Path is empty.
func InitFile(level string, file FileOptions) error {
	if file.Path == "" {
		return build(level, []zapcore.WriteSyncer{zapcore.Lock(os.Stderr)})
	}
	return build(level, []zapcore.WriteSyncer{rotated(file)})
}

func build(level string, sinks []zapcore.WriteSyncer) error {
	// Parse the log level
	var zapLevel zapcore.Level
	err := zapLevel.UnmarshalText([]byte(level))
	if err != nil {
		return err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	// Disable stack traces
	encoderConfig.StacktraceKey = ""

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.NewMultiWriteSyncer(sinks...),
		zap.NewAtomicLevelAt(zapLevel),
	)

	Log = zap.New(core, zap.ErrorOutput(zapcore.Lock(os.Stderr)))
	return nil
}

func rotated(file FileOptions) zapcore.WriteSyncer {
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   file.Path,
		MaxSize:    file.MaxSizeMB,
		MaxBackups: file.MaxBackups,
		MaxAge:     file.MaxAgeDays,
		Compress:   true,
	})
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	if Log == nil {
		// If logger is not initialized, create a default production logger
		var err error
		Log, err = zap.NewProduction(zap.WithCaller(false))
		if err != nil {
			panic(err)
		}
	}
	return Log
}

// Sync flushes any buffered log entries
func Sync() error {
	if Log == nil {
		return nil
	}
	return Log.Sync()
}
