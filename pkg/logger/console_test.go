package logger_test

import (
	"bytes"
	"strings"
	"testing"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/efs/pkg/logger"
)

func TestConsoleLogger_FormatsPlainLines(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	var buf bytes.Buffer
	log := logger.NewConsoleLogger(&buf, "info")

	log.LogInfo("scan started")

	line := buf.String()
	g.Expect(line).To(MatchRegexp(`^\[\d{2}:\d{2}:\d{2}\] \[INFO\] scan started\n$`))
}

func TestConsoleLogger_FiltersBelowLevel(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	var buf bytes.Buffer
	log := logger.NewConsoleLogger(&buf, "warn")

	log.LogTrace("trace")
	log.LogDebug("debug")
	log.LogInfo("info")
	log.LogWarn("warn")
	log.LogError("error")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	g.Expect(lines).To(HaveLen(2))
	g.Expect(lines[0]).To(ContainSubstring("[WARN] warn"))
	g.Expect(lines[1]).To(ContainSubstring("[ERROR] error"))
}

func TestConsoleLogger_NilWriterDiscards(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	log := logger.NewConsoleLogger(nil, "trace")

	g.Expect(func() { log.LogError("nothing") }).NotTo(Panic())
}

func TestNormalizeLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"DEBUG", "debug"},
		{"  warn ", "warn"},
		{"", "info"},
		{"verbose", "info"},
		{"error", "error"},
	}

	for _, tt := range tests {
		if got := logger.NormalizeLevel(tt.input); got != tt.expected {
			t.Errorf("NormalizeLevel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
