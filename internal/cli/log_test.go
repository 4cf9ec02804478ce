package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/entitymap/pkg/observability"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{
			name:    "info at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Info("test") },
			wantLog: true,
		},
		{
			name:    "debug at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: false,
		},
		{
			name:    "debug at debug level",
			level:   log.DebugLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)
			tt.logFunc(logger)

			gotLog := buf.Len() > 0
			if gotLog != tt.wantLog {
				t.Errorf("got log output = %v, want %v", gotLog, tt.wantLog)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.DebugLevel)

	prog := newProgress(logger)
	time.Sleep(5 * time.Millisecond)
	prog.done("walked", "root", "/src")

	out := buf.String()
	for _, want := range []string{"walked", "root=/src", "elapsed="} {
		if !strings.Contains(out, want) {
			t.Errorf("progress output %q missing %q", out, want)
		}
	}
}

func TestProgressQuietAtInfo(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("walked")
	if buf.Len() != 0 {
		t.Errorf("progress should log at debug level only, got %q", buf.String())
	}
}

func TestSetLogLevelRegistersHooks(t *testing.T) {
	defer observability.Reset()

	var buf bytes.Buffer
	c := New(&buf, LogInfo)
	c.SetLogLevel(LogInfo)
	if _, ok := observability.Pipeline().(*observability.LogHooks); ok {
		t.Fatal("hooks should stay no-op at info level")
	}

	c.SetLogLevel(LogDebug)
	if _, ok := observability.Pipeline().(*observability.LogHooks); !ok {
		t.Fatalf("pipeline hooks = %T, want *observability.LogHooks", observability.Pipeline())
	}

	observability.Pipeline().OnLayoutStart(context.Background(), 3)
	if !strings.Contains(buf.String(), "hooks") {
		t.Errorf("debug hooks should log through the CLI logger, got %q", buf.String())
	}
}
