package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel is one of the configurable log channels
type LogLevel int

const (
	LogLevelQuery LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelQuery:
		return "query"
	case LogLevelInfo:
		return "info"
	case LogLevelWarn:
		return "warn"
	case LogLevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Logger writes leveled, redacted output through a zap core.
// Levels are switched on individually, so "query" can be enabled without "info".
type Logger struct {
	levels map[LogLevel]bool
	sugar  *zap.SugaredLogger
}

var (
	mu            sync.RWMutex
	defaultLogger = NewLogger([]string{"warn", "error"}, os.Stderr)
)

// NewLogger builds a logger writing console-encoded lines to writer
func NewLogger(levels []string, writer io.Writer) *Logger {
	l := &Logger{levels: ParseLevels(levels)}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(writer),
		zapcore.DebugLevel,
	)
	l.sugar = zap.New(core).Sugar()
	return l
}

// NewZapLogger wraps an existing zap logger with every level enabled
func NewZapLogger(z *zap.Logger) *Logger {
	return &Logger{
		levels: ParseLevels([]string{"query", "info", "warn", "error"}),
		sugar:  z.Sugar(),
	}
}

// Nop discards everything
func Nop() *Logger {
	return &Logger{levels: map[LogLevel]bool{}, sugar: zap.NewNop().Sugar()}
}

// ParseLevels turns names such as "query" or "warning" into an enabled set
func ParseLevels(levels []string) map[LogLevel]bool {
	set := make(map[LogLevel]bool)
	for _, level := range levels {
		switch strings.ToLower(strings.TrimSpace(level)) {
		case "query":
			set[LogLevelQuery] = true
		case "info":
			set[LogLevelInfo] = true
		case "warn", "warning":
			set[LogLevelWarn] = true
		case "error":
			set[LogLevelError] = true
		}
	}
	return set
}

// Enabled reports whether level is switched on
func (l *Logger) Enabled(level LogLevel) bool {
	return l.levels[level]
}

// Query logs a statement with its arguments inlined
func (l *Logger) Query(query string, args []interface{}, duration time.Duration) {
	if !l.levels[LogLevelQuery] {
		return
	}
	l.sugar.Debugw(formatQuery(query, args), "took", duration)
}

func (l *Logger) Info(format string, args ...interface{}) {
	if !l.levels[LogLevelInfo] {
		return
	}
	l.sugar.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	if !l.levels[LogLevelWarn] {
		return
	}
	l.sugar.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	if !l.levels[LogLevelError] {
		return
	}
	l.sugar.Errorf(format, args...)
}

// Sync flushes buffered entries
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

// formatQuery inlines args into their placeholders for display
func formatQuery(query string, args []interface{}) string {
	if len(args) == 0 {
		return query
	}

	formatted := query
	if strings.Contains(query, "$1") {
		// replace from the highest index down so $1 does not clobber $10
		for i := len(args); i >= 1; i-- {
			formatted = strings.ReplaceAll(formatted, fmt.Sprintf("$%d", i), formatArg(args[i-1]))
		}
		return formatted
	}

	for _, arg := range args {
		if !strings.Contains(formatted, "?") {
			break
		}
		formatted = strings.Replace(formatted, "?", formatArg(arg), 1)
	}
	return formatted
}

// formatArg renders one bind value, redacting anything that looks sensitive
func formatArg(arg interface{}) string {
	switch v := arg.(type) {
	case string:
		if isSensitiveData(v) {
			return "'***REDACTED***'"
		}
		if len(v) > 100 {
			return fmt.Sprintf("'%s...' (truncated)", v[:100])
		}
		return fmt.Sprintf("'%s'", v)
	case *string:
		if v == nil {
			return "NULL"
		}
		return formatArg(*v)
	case []byte:
		if len(v) > 0 {
			return "'***REDACTED***'"
		}
		return "''"
	case nil:
		return "NULL"
	default:
		str := fmt.Sprintf("%v", v)
		if isSensitiveData(str) {
			return "***REDACTED***"
		}
		return str
	}
}

var sensitiveKeywords = []string{
	"password", "passwd", "pwd",
	"secret", "token", "api_key", "apikey",
	"authorization", "credential", "private_key",
	"credit_card", "cvv",
}

func isSensitiveData(s string) bool {
	s = strings.ToLower(s)
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}

	// JWT, Stripe, GitHub and Slack token shapes
	if len(s) > 20 && (strings.HasPrefix(s, "eyj") ||
		strings.HasPrefix(s, "sk_") ||
		strings.HasPrefix(s, "pk_") ||
		strings.HasPrefix(s, "ghp_") ||
		strings.HasPrefix(s, "xoxb-") ||
		strings.HasPrefix(s, "xoxp-")) {
		return true
	}
	return false
}

func SetDefaultLogger(l *Logger) {
	mu.Lock()
	defaultLogger = l
	mu.Unlock()
}

func GetDefaultLogger() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// SetLogLevels replaces the default logger with one enabling levels on stderr
func SetLogLevels(levels []string) {
	SetDefaultLogger(NewLogger(levels, os.Stderr))
}

func Query(query string, args []interface{}, duration time.Duration) {
	GetDefaultLogger().Query(query, args, duration)
}

func Info(format string, args ...interface{}) {
	GetDefaultLogger().Info(format, args...)
}

func Warn(format string, args ...interface{}) {
	GetDefaultLogger().Warn(format, args...)
}

func Error(format string, args ...interface{}) {
	GetDefaultLogger().Error(format, args...)
}

// FileLogger appends to filename
func FileLogger(filename string, levels []string) (*Logger, error) {
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return NewLogger(levels, file), nil
}
