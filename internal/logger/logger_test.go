package logger

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_LevelsAreIndependent(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger([]string{"query", "error"}, &buf)

	l.Info("hidden %d", 1)
	l.Warn("hidden too")
	if buf.Len() != 0 {
		t.Fatalf("expected info and warn to be suppressed, got %q", buf.String())
	}

	l.Query(`SELECT * FROM "member" WHERE "username" = $1`, []interface{}{"member1"}, time.Millisecond)
	l.Error("boom %s", "here")

	out := buf.String()
	if !strings.Contains(out, `"username" = 'member1'`) {
		t.Errorf("expected inlined argument, got %q", out)
	}
	if !strings.Contains(out, "boom here") || !strings.Contains(out, "ERROR") {
		t.Errorf("expected error line, got %q", out)
	}
}

func TestFormatQuery(t *testing.T) {
	name := "member1"
	tests := []struct {
		name  string
		query string
		args  []interface{}
		want  string
	}{
		{"no args", "SELECT 1", nil, "SELECT 1"},
		{"question marks", "SELECT * FROM member WHERE age > ? AND username = ?", []interface{}{10, "m"}, "SELECT * FROM member WHERE age > 10 AND username = 'm'"},
		{"dollar placeholders", "age = $1 OR age = $2", []interface{}{1, nil}, "age = 1 OR age = NULL"},
		{"double digit placeholder", "$1,$10", []interface{}{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, "1,10"},
		{"string pointer", "username = ?", []interface{}{&name}, "username = 'member1'"},
		{"redacted", "password = ?", []interface{}{"password123"}, "password = '***REDACTED***'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatQuery(tt.query, tt.args); got != tt.want {
				t.Errorf("formatQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNopLogger(t *testing.T) {
	l := Nop()
	l.Error("nothing")
	if l.Enabled(LogLevelError) {
		t.Error("Nop logger should have no level enabled")
	}
}

func TestNewZapLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZapLogger(zap.New(core))

	l.Query(`SELECT 1 WHERE "age" = $1`, []interface{}{10}, time.Millisecond)
	l.Info("entity manager %s: committed", "abc")
	l.Warn("slow")

	entries := logs.AllUntimed()
	if len(entries) != 3 {
		t.Fatalf("expected every level to be enabled, got %d entries", len(entries))
	}
	if entries[0].Level != zapcore.DebugLevel || entries[0].Message != `SELECT 1 WHERE "age" = 10` {
		t.Errorf("unexpected query entry: %+v", entries[0].Entry)
	}
	if entries[1].Message != "entity manager abc: committed" {
		t.Errorf("unexpected info entry: %q", entries[1].Message)
	}
}
