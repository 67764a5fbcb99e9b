package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestLogger_JSONIncludesContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := Logger(&buf, true, slog.LevelInfo)

	ctx := AppendCtx(context.Background(), slog.Group("session", slog.String("id", "abc123")))
	logger.InfoContext(ctx, "session opened")

	out := buf.String()
	if !strings.Contains(out, "abc123") {
		t.Fatalf("expected log output to include context-attached session id, got: %s", out)
	}
	if !strings.Contains(out, "session opened") {
		t.Fatalf("expected log output to include the message, got: %s", out)
	}
}

func TestLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := Logger(&buf, false, slog.LevelWarn)

	logger.InfoContext(context.Background(), "should be filtered")
	if buf.Len() != 0 {
		t.Fatalf("expected info-level record to be filtered at warn level, got: %s", buf.String())
	}

	logger.WarnContext(context.Background(), "should appear")
	if !strings.Contains(buf.String(), "should appear") {
		t.Fatalf("expected warn-level record to appear, got: %s", buf.String())
	}
}
