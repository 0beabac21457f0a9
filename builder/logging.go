package builder

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/study/querydsl-go/internal/logger"
)

var slowQueryThreshold atomic.Int64

func init() {
	slowQueryThreshold.Store(int64(time.Second))
}

// SetSlowQueryThreshold sets the duration above which a statement is logged as slow
func SetSlowQueryThreshold(d time.Duration) {
	if d > 0 {
		slowQueryThreshold.Store(int64(d))
	}
}

// SetLogLevels configures the default logger
func SetLogLevels(levels []string) {
	logger.SetLogLevels(levels)
}

// detectQueryType returns the leading SQL keyword
func detectQueryType(query string) string {
	upper := strings.ToUpper(strings.TrimSpace(query))
	for _, kind := range []string{"SELECT", "INSERT", "UPDATE", "DELETE", "WITH"} {
		if strings.HasPrefix(upper, kind) {
			return kind
		}
	}
	return "UNKNOWN"
}

// logExecution logs the statement and its timing, warns on slow statements and
// feeds the N+1 detector.
func logExecution(s Session, table, query string, args []interface{}, duration time.Duration, rows int) {
	l := s.Logger()
	if l == nil {
		l = logger.GetDefaultLogger()
	}

	l.Query(query, args, duration)
	queryType := detectQueryType(query)
	l.Info("%s executed in %v (%d rows)", queryType, duration, rows)

	if duration > time.Duration(slowQueryThreshold.Load()) {
		l.Warn("Slow query detected: %s took %v", queryType, duration)
	}

	if queryType != "SELECT" {
		return
	}
	if alert, ok := s.Detector().Record(query, table); ok {
		l.Warn("%s", alert.String())
	}
}

func logFailure(s Session, query string, err error) {
	l := s.Logger()
	if l == nil {
		l = logger.GetDefaultLogger()
	}
	l.Error("%s query failed: %v", detectQueryType(query), err)
}
