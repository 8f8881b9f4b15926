package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"sales-dashboard/internal/config"
)

func TestNewLoggerTo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, config.LoggerConfig{Level: "warn", Format: "text"})

	logger.Info("hidden")
	logger.Warn("shown", "rows", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(out, "msg=shown") || !strings.Contains(out, "rows=3") {
		t.Errorf("unexpected text output: %s", out)
	}

	buf.Reset()
	NewLoggerTo(&buf, config.LoggerConfig{Level: "info", Format: "json"}).Info("loaded")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("expected JSON output, got %s", buf.String())
	}
}

func TestRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-42")
	if got := GetRequestID(ctx); got != "req-42" {
		t.Errorf("GetRequestID() = %q", got)
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID() on empty context = %q", got)
	}
}

func TestSpans(t *testing.T) {
	ctx, parent := StartSpan(context.Background(), "GET /")
	_, child := StartSpan(ctx, "datasource.load")

	if child.TraceID != parent.TraceID {
		t.Error("child span should join the parent trace")
	}
	if child.ParentID != parent.SpanID {
		t.Error("child span should reference its parent")
	}
	if len(parent.SpanID) != 16 {
		t.Errorf("span id %q should be 16 hex chars", parent.SpanID)
	}

	child.SetError(errors.New("no such table"))
	child.Finish()
	if !child.Failed() {
		t.Error("span with error should report Failed")
	}

	var buf bytes.Buffer
	NewLoggerTo(&buf, config.LoggerConfig{Level: "info", Format: "text"}).Info("span", "span", child)
	if !strings.Contains(buf.String(), "span.operation=datasource.load") {
		t.Errorf("span not logged as a group: %s", buf.String())
	}
}
