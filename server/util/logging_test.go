package util

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Printf(format string, v ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

func TestRequestLogger(t *testing.T) {
	logger := &recordingLogger{}
	req := httptest.NewRequest(http.MethodDelete, "/videos/v1", nil)

	rl := WithRequest(logger, req, "admin@test.com")
	rl.Infof("removed %s", "v1")
	rl.Errorf("backend said no")

	if len(logger.lines) != 2 {
		t.Fatalf("expected two log lines, got %d", len(logger.lines))
	}

	if !strings.Contains(logger.lines[0], "INFO") ||
		!strings.Contains(logger.lines[0], "DELETE /videos/v1") ||
		!strings.Contains(logger.lines[0], "admin@test.com") ||
		!strings.Contains(logger.lines[0], "removed v1") {
		t.Errorf("unexpected info line: %q", logger.lines[0])
	}

	if !strings.Contains(logger.lines[1], "ERROR") {
		t.Errorf("unexpected error line: %q", logger.lines[1])
	}
}

func TestLoggerContextRoundTrip(t *testing.T) {
	logger := &recordingLogger{}
	req := httptest.NewRequest(http.MethodGet, "/videos", nil)
	rl := WithRequest(logger, req, "")

	ctx := ContextWithLogger(context.Background(), rl)
	if got := FromContext(ctx); got != rl {
		t.Error("expected the stored logger back")
	}

	if FromContext(context.Background()) != nil {
		t.Error("expected nil for a bare context")
	}

	if FromContext(nil) != nil {
		t.Error("expected nil for a nil context")
	}
}
