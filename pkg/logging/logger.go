package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dougsko/rigd/pkg/config"
	"gopkg.in/lumberjack.v2"
)

// LogLevel represents logging levels
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns string representation of log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel parses a string log level
func ParseLogLevel(level string) LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger writes component-tagged log lines to a rotating file, the console, or both
type Logger struct {
	level         LogLevel
	fileLogger    *log.Logger
	consoleLogger *log.Logger
	structured    bool
	rotatingFile  *lumberjack.Logger
}

// NewLogger creates a new logger from configuration
func NewLogger(cfg *config.Config) (*Logger, error) {
	logger := &Logger{
		level:      ParseLogLevel(cfg.Logging.Level),
		structured: cfg.Logging.Structured,
	}

	if cfg.Logging.File != "" {
		logDir := filepath.Dir(cfg.Logging.File)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		logger.rotatingFile = &lumberjack.Logger{
			Filename:   cfg.Logging.File,
			MaxSize:    cfg.Logging.MaxSize,    // megabytes
			MaxBackups: cfg.Logging.MaxBackups, // number of backups
			MaxAge:     cfg.Logging.MaxAge,     // days
			Compress:   cfg.Logging.Compress,
		}

		logger.fileLogger = log.New(logger.rotatingFile, "", 0)
	}

	// Console output when asked for, or when there is nowhere else to write
	if cfg.Logging.Console || logger.fileLogger == nil {
		logger.consoleLogger = log.New(os.Stdout, "", 0)
	}

	return logger, nil
}

// New creates a logger that writes to w only
func New(w io.Writer, level LogLevel, structured bool) *Logger {
	return &Logger{
		level:         level,
		structured:    structured,
		consoleLogger: log.New(w, "", 0),
	}
}

// Close closes the logger and any open files
func (l *Logger) Close() error {
	if l.rotatingFile != nil {
		return l.rotatingFile.Close()
	}
	return nil
}

// Level returns the minimum level that is written
func (l *Logger) Level() LogLevel {
	return l.level
}

func (l *Logger) shouldLog(level LogLevel) bool {
	return level >= l.level
}

func sortedKeys(fields map[string]interface{}) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (l *Logger) formatMessage(level LogLevel, component, message string, fields map[string]interface{}) string {
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")

	if l.structured {
		var b strings.Builder
		fmt.Fprintf(&b, `{"time":%q,"level":%q,"component":%q,"message":%s`,
			timestamp, level.String(), component, strconv.Quote(message))
		for _, k := range sortedKeys(fields) {
			fmt.Fprintf(&b, ",%s:%s", strconv.Quote(k), strconv.Quote(fmt.Sprint(fields[k])))
		}
		b.WriteString("}")
		return b.String()
	}

	fieldsStr := ""
	if len(fields) > 0 {
		var parts []string
		for _, k := range sortedKeys(fields) {
			parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
		}
		fieldsStr = fmt.Sprintf(" [%s]", strings.Join(parts, " "))
	}
	return fmt.Sprintf("%s [%s] %s: %s%s",
		timestamp, level.String(), component, message, fieldsStr)
}

func (l *Logger) log(level LogLevel, component, message string, fields map[string]interface{}) {
	if !l.shouldLog(level) {
		return
	}

	formatted := l.formatMessage(level, component, message, fields)

	if l.fileLogger != nil {
		l.fileLogger.Println(formatted)
	}

	if l.consoleLogger != nil {
		l.consoleLogger.Println(formatted)
	}
}

func firstFields(fields []map[string]interface{}) map[string]interface{} {
	if len(fields) > 0 {
		return fields[0]
	}
	return nil
}

// Debug logs a debug message
func (l *Logger) Debug(component, message string, fields ...map[string]interface{}) {
	l.log(LevelDebug, component, message, firstFields(fields))
}

// Info logs an info message
func (l *Logger) Info(component, message string, fields ...map[string]interface{}) {
	l.log(LevelInfo, component, message, firstFields(fields))
}

// Warn logs a warning message
func (l *Logger) Warn(component, message string, fields ...map[string]interface{}) {
	l.log(LevelWarn, component, message, firstFields(fields))
}

// Error logs an error message
func (l *Logger) Error(component, message string, fields ...map[string]interface{}) {
	l.log(LevelError, component, message, firstFields(fields))
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(component, format string, args ...interface{}) {
	l.Debug(component, fmt.Sprintf(format, args...))
}

// Infof logs a formatted info message
func (l *Logger) Infof(component, format string, args ...interface{}) {
	l.Info(component, fmt.Sprintf(format, args...))
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(component, format string, args ...interface{}) {
	l.Warn(component, fmt.Sprintf(format, args...))
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(component, format string, args ...interface{}) {
	l.Error(component, fmt.Sprintf(format, args...))
}

// WithFields creates a logger with predefined fields
func (l *Logger) WithFields(fields map[string]interface{}) *FieldLogger {
	return &FieldLogger{
		logger: l,
		fields: fields,
	}
}

// FieldLogger is a logger with predefined fields
type FieldLogger struct {
	logger *Logger
	fields map[string]interface{}
}

func (fl *FieldLogger) merge(extra []map[string]interface{}) map[string]interface{} {
	if len(extra) == 0 {
		return fl.fields
	}
	merged := make(map[string]interface{}, len(fl.fields)+len(extra[0]))
	for k, v := range fl.fields {
		merged[k] = v
	}
	for k, v := range extra[0] {
		merged[k] = v
	}
	return merged
}

// Debug logs a debug message with predefined fields
func (fl *FieldLogger) Debug(component, message string, fields ...map[string]interface{}) {
	fl.logger.log(LevelDebug, component, message, fl.merge(fields))
}

// Info logs an info message with predefined fields
func (fl *FieldLogger) Info(component, message string, fields ...map[string]interface{}) {
	fl.logger.log(LevelInfo, component, message, fl.merge(fields))
}

// Error logs an error message with predefined fields
func (fl *FieldLogger) Error(component, message string, fields ...map[string]interface{}) {
	fl.logger.log(LevelError, component, message, fl.merge(fields))
}

// Warnf logs a formatted warning message with predefined fields
func (fl *FieldLogger) Warnf(component, format string, args ...interface{}) {
	fl.logger.log(LevelWarn, component, fmt.Sprintf(format, args...), fl.fields)
}

var (
	globalMu     sync.Mutex
	globalLogger *Logger
)

// InitGlobalLogger initializes the global logger
func InitGlobalLogger(cfg *config.Config) error {
	logger, err := NewLogger(cfg)
	if err != nil {
		return err
	}
	SetGlobalLogger(logger)
	return nil
}

// SetGlobalLogger replaces the global logger
func SetGlobalLogger(logger *Logger) {
	globalMu.Lock()
	globalLogger = logger
	globalMu.Unlock()
}

// GetGlobalLogger returns the global logger
func GetGlobalLogger() *Logger {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		// Fallback to console logging if not initialized
		globalLogger = New(os.Stdout, LevelInfo, false)
	}
	return globalLogger
}

// CloseGlobalLogger closes the global logger
func CloseGlobalLogger() error {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger != nil {
		return globalLogger.Close()
	}
	return nil
}

// Convenience functions for global logger
func Debug(component, message string, fields ...map[string]interface{}) {
	GetGlobalLogger().Debug(component, message, fields...)
}

func Info(component, message string, fields ...map[string]interface{}) {
	GetGlobalLogger().Info(component, message, fields...)
}

func Warn(component, message string, fields ...map[string]interface{}) {
	GetGlobalLogger().Warn(component, message, fields...)
}

func Error(component, message string, fields ...map[string]interface{}) {
	GetGlobalLogger().Error(component, message, fields...)
}

func Debugf(component, format string, args ...interface{}) {
	GetGlobalLogger().Debugf(component, format, args...)
}

func Infof(component, format string, args ...interface{}) {
	GetGlobalLogger().Infof(component, format, args...)
}

func Warnf(component, format string, args ...interface{}) {
	GetGlobalLogger().Warnf(component, format, args...)
}

func Errorf(component, format string, args ...interface{}) {
	GetGlobalLogger().Errorf(component, format, args...)
}
