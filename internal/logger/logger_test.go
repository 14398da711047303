package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// observe routes Log through an in-memory core configured the way Init
// configures the real one.
func observe(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()
	prev := Log
	core, logs := observer.New(level)
	set(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)))
	t.Cleanup(func() { set(prev) })
	return logs
}

func TestNopUntilInit(t *testing.T) {
	if Log.Core().Enabled(zapcore.ErrorLevel) {
		t.Fatal("default logger records entries before Init")
	}
	// Component loggers taken before Init must be usable.
	Named("atlas").Error("cell failed", zap.Int("index", 3))
	Sugar.Warnw("ignored", "item", "Mango")
}

func TestNamedComponent(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	Named("carousel").Warn("graphics setup failed", zap.String("reason", "no GL 4.1"))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.LoggerName != "carousel" {
		t.Errorf("component = %q, want carousel", e.LoggerName)
	}
	if got := e.ContextMap()["reason"]; got != "no GL 4.1" {
		t.Errorf("reason = %v", got)
	}
	if !strings.HasSuffix(e.Caller.File, "logger_test.go") {
		t.Errorf("caller = %s, want this test file", e.Caller.File)
	}
}

func TestPackageHelpersReportCaller(t *testing.T) {
	logs := observe(t, zapcore.InfoLevel)

	Debug("filtered")
	Info("atlas ready", zap.Int("cells", 9))
	Sugar.Errorw("asset missing", "ref", "/mango.png")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2 (debug filtered)", len(entries))
	}
	for _, e := range entries {
		if !strings.HasSuffix(e.Caller.File, "logger_test.go") {
			t.Errorf("%q caller = %s, want this test file", e.Message, e.Caller.File)
		}
	}
	if entries[1].Level != zapcore.ErrorLevel {
		t.Errorf("sugar entry level = %v", entries[1].Level)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("logs/carousel.log")
	want := FileConfig{
		Path:       "logs/carousel.log",
		MaxSizeMB:  20,
		MaxBackups: 5,
		MaxAgeDays: 14,
		Compress:   true,
	}
	if cfg != want {
		t.Errorf("DefaultFileConfig() = %+v, want %+v", cfg, want)
	}
}

func TestFileOutput(t *testing.T) {
	prev := Log
	t.Cleanup(func() { set(prev) })

	path := filepath.Join(t.TempDir(), "carousel.log")
	if err := InitWithFileConfig("warn", DefaultFileConfig(path), false); err != nil {
		t.Fatalf("InitWithFileConfig: %v", err)
	}

	log := Named("assets")
	log.Info("cache hit", zap.String("ref", "/chikku.png"))
	log.Warn("download failed", zap.String("ref", "https://cdn.example/guava.png"))
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "WARN") || !strings.Contains(out, "assets") || !strings.Contains(out, "download failed") {
		t.Errorf("log file missing warning entry:\n%s", out)
	}
	if strings.Contains(out, "cache hit") {
		t.Errorf("info entry written at warn level:\n%s", out)
	}
}
