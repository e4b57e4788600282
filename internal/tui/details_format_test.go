package tui

import (
	"regexp"
	"strings"
	"testing"
)

var ansiEscapeRE = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiEscapeRE.ReplaceAllString(s, "")
}

func TestComputeDetailLabelWidthMinAndCap(t *testing.T) {
	lines := []string{
		"PID: 123",
		"Name: foo",
	}
	if w := computeDetailLabelWidth(lines, 80); w != 12 {
		t.Fatalf("label width should be 12 for short labels, got %d", w)
	}

	longLabelLines := []string{
		"ExtremelyLongLabelNameThatShouldBeCapped: value",
	}
	if w := computeDetailLabelWidth(longLabelLines, 80); w != 24 {
		t.Fatalf("label width should be capped at 24, got %d", w)
	}

	if w := computeDetailLabelWidth(lines, 5); w != 4 {
		t.Fatalf("label width must leave a value column, got %d", w)
	}
}

func TestFormatProcessDetailsWrapValueAndIndent(t *testing.T) {
	details := strings.Join([]string{
		"PID: 123",
		"Command: this is a very long command line with many words to wrap nicely",
	}, "\n") + "\n"

	out := stripANSI(formatProcessDetails(details, 40))
	lines := strings.Split(out, "\n")

	cmdLineIdx := -1
	for i, ln := range lines {
		if strings.Contains(ln, "Command:") {
			cmdLineIdx = i
			break
		}
	}
	if cmdLineIdx == -1 || cmdLineIdx+1 >= len(lines) {
		t.Fatalf("expected Command line followed by a continuation, got:\n%s", out)
	}

	first := lines[cmdLineIdx]
	second := lines[cmdLineIdx+1]
	if !strings.Contains(first, "this is a very long") {
		t.Fatalf("expected first Command line to contain value prefix, got: %q", first)
	}
	if strings.Contains(second, "Command:") {
		t.Fatalf("expected continuation line not to repeat label, got: %q", second)
	}
	if !strings.HasPrefix(second, strings.Repeat(" ", 13)) {
		t.Fatalf("expected continuation line to be indented to the value column, got: %q", second)
	}
}

func TestFormatProcessDetailsEmpty(t *testing.T) {
	if out := stripANSI(formatProcessDetails("\n", 40)); out != "(no details)" {
		t.Fatalf("unexpected output for empty details: %q", out)
	}
}

func TestSplitDetailLine(t *testing.T) {
	tests := []struct {
		line, label, value string
	}{
		{"PID: 42", "PID", "42"},
		{"Started: 2026-01-02 10:11:12", "Started", "2026-01-02 10:11:12"},
		{"Ports:\t80, 443", "Ports", "80, 443"},
		{"no label here", "", "no label here"},
	}
	for _, tt := range tests {
		label, value := splitDetailLine(tt.line)
		if label != tt.label || value != tt.value {
			t.Errorf("splitDetailLine(%q) = (%q, %q), want (%q, %q)", tt.line, label, value, tt.label, tt.value)
		}
	}
}

func TestWrapPlainTextSplitsLongTokens(t *testing.T) {
	got := wrapPlainText("abcdefghij", 4)
	want := []string{"abcd", "efgh", "ij"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("wrapPlainText = %q, want %q", got, want)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate kept = %q", got)
	}
	if got := truncate("verylongexecutable", 8); got != "verylon…" {
		t.Fatalf("truncate cut = %q", got)
	}
}
