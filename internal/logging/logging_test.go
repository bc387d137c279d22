package logging

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		debug    string
		level    string
		expected LogLevel
	}{
		{"Debug via LOG_LEVEL", "", "debug", LevelDebug},
		{"Info via LOG_LEVEL", "", "info", LevelInfo},
		{"Warn via LOG_LEVEL", "", "warn", LevelWarn},
		{"Warning alias", "", "warning", LevelWarn},
		{"Error via LOG_LEVEL", "", "error", LevelError},
		{"Case insensitive", "", "DEBUG", LevelDebug},
		{"Unknown defaults to info", "", "verbose", LevelInfo},
		{"Empty defaults to info", "", "", LevelInfo},
		{"DEBUG=true wins", "true", "error", LevelDebug},
		{"DEBUG=1 wins", "1", "warn", LevelDebug},
		{"DEBUG=false ignored", "false", "warn", LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseLevel(tt.debug, tt.level); got != tt.expected {
				t.Errorf("parseLevel(%q, %q) = %v, want %v", tt.debug, tt.level, got, tt.expected)
			}
		})
	}
}

func TestLogLevelConstants(t *testing.T) {
	if LevelDebug >= LevelInfo {
		t.Error("LevelDebug should be less than LevelInfo")
	}
	if LevelInfo >= LevelWarn {
		t.Error("LevelInfo should be less than LevelWarn")
	}
	if LevelWarn >= LevelError {
		t.Error("LevelWarn should be less than LevelError")
	}
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LogLevel(42), "unknown(42)"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("LogLevel(%d).String() = %q, want %q", tt.level, got, tt.expected)
		}
	}
}

func TestSinkPrefix(t *testing.T) {
	var buf bytes.Buffer
	orig := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(orig)

	sink := NewSink("ffmpeg 720p")
	if sink.Prefix() != "[ffmpeg 720p] " {
		t.Fatalf("unexpected prefix %q", sink.Prefix())
	}

	sink.Error("exit status %d", 1)

	if !strings.Contains(buf.String(), "[ERROR] [ffmpeg 720p] exit status 1") {
		t.Errorf("expected prefixed error line, got %q", buf.String())
	}
}

func TestNewSinkEmptyName(t *testing.T) {
	if NewSink("").Prefix() != "" {
		t.Error("expected empty prefix for unnamed sink")
	}
}

func TestSetLevel(t *testing.T) {
	prev := GetLevel()
	defer SetLevel(prev)

	SetLevel(LevelError)
	if GetLevel() != LevelError {
		t.Errorf("GetLevel() = %v, want %v", GetLevel(), LevelError)
	}
	if IsDebugEnabled() {
		t.Error("IsDebugEnabled() = true at error level")
	}

	SetLevel(LevelDebug)
	if !IsDebugEnabled() {
		t.Error("IsDebugEnabled() = false at debug level")
	}
}
