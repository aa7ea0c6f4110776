// TasteTrail feedrank - Personalized Review Feed Ranking Service
// Copyright 2026 TasteTrail
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastetrail/feedrank

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"disabled", zerolog.Disabled},
		{"INFO", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestInitAndLog(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	Info().Str("component", "test").Msg("hello")

	out := buf.String()
	if !strings.Contains(out, `"component":"test"`) {
		t.Errorf("expected structured field in output, got %q", out)
	}
	if !strings.Contains(out, `"message":"hello"`) {
		t.Errorf("expected message in output, got %q", out)
	}
}

func TestSetLogger(t *testing.T) {
	original := Logger()
	defer SetLogger(original)

	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))

	Warn().Msg("replaced")

	if !strings.Contains(buf.String(), "replaced") {
		t.Errorf("expected replaced logger to capture output, got %q", buf.String())
	}
}

func TestCtxAddsRequestAndViewerID(t *testing.T) {
	var buf bytes.Buffer
	original := Logger()
	SetLogger(NewTestLogger(&buf))
	defer SetLogger(original)

	ctx := ContextWithRequestID(context.Background(), "req-123")
	ctx = ContextWithViewerID(ctx, "viewer-456")

	Ctx(ctx).Info().Msg("ranked")

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-123"`) {
		t.Errorf("expected request_id in output, got %q", out)
	}
	if !strings.Contains(out, `"viewer_id":"viewer-456"`) {
		t.Errorf("expected viewer_id in output, got %q", out)
	}
}

func TestCtxWithoutValues(t *testing.T) {
	var buf bytes.Buffer
	original := Logger()
	SetLogger(NewTestLogger(&buf))
	defer SetLogger(original)

	Ctx(context.Background()).Info().Msg("plain")

	out := buf.String()
	if strings.Contains(out, "request_id") || strings.Contains(out, "viewer_id") {
		t.Errorf("expected no context fields, got %q", out)
	}
}

func TestLoggerFromContextFallsBackToGlobal(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), NewTestLogger(&buf))

	stored := LoggerFromContext(ctx)
	stored.Info().Msg("stored")
	if !strings.Contains(buf.String(), "stored") {
		t.Errorf("expected stored logger to be used, got %q", buf.String())
	}

	fallback := LoggerFromContext(context.Background())
	fallback.Info().Msg("global")
	if strings.Contains(buf.String(), "global") {
		t.Errorf("bare context should fall back to the global logger, got %q", buf.String())
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	id := GenerateRequestID()
	if id == "" {
		t.Fatal("GenerateRequestID returned empty string")
	}

	ctx := ContextWithRequestID(context.Background(), id)
	if got := RequestIDFromContext(ctx); got != id {
		t.Errorf("RequestIDFromContext = %q, want %q", got, id)
	}
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("expected empty request ID on bare context, got %q", got)
	}
}

func TestSlogHandlerWritesToZerolog(t *testing.T) {
	var buf bytes.Buffer
	handler := NewSlogHandlerWithLogger(NewTestLogger(&buf))
	slogger := slog.New(handler)

	slogger.Info("supervisor event", slog.String("service", "http"), slog.Int64("restarts", 2))

	out := buf.String()
	if !strings.Contains(out, `"service":"http"`) {
		t.Errorf("expected slog attr in zerolog output, got %q", out)
	}
	if !strings.Contains(out, `"restarts":2`) {
		t.Errorf("expected int attr in zerolog output, got %q", out)
	}
	if !strings.Contains(out, "supervisor event") {
		t.Errorf("expected message in zerolog output, got %q", out)
	}
}

func TestSlogHandlerWithGroup(t *testing.T) {
	var buf bytes.Buffer
	handler := NewSlogHandlerWithLogger(NewTestLogger(&buf))
	slogger := slog.New(handler).WithGroup("suture")

	slogger.Warn("backoff", slog.String("reason", "crash"))

	if !strings.Contains(buf.String(), `"suture.reason":"crash"`) {
		t.Errorf("expected grouped key, got %q", buf.String())
	}
}
