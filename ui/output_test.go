package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestOutputPlain(t *testing.T) {
	DisableColor()

	tests := []struct {
		name  string
		print func(w *bytes.Buffer)
		want  string
	}{
		{"success", func(w *bytes.Buffer) { PrintSuccess(w, "up to date") }, SymbolSuccess + " up to date\n"},
		{"error", func(w *bytes.Buffer) { PrintError(w, "failed") }, SymbolError + " failed\n"},
		{"warning", func(w *bytes.Buffer) { PrintWarning(w, "skipped") }, SymbolWarning + " skipped\n"},
		{"info", func(w *bytes.Buffer) { PrintInfo(w, "new build") }, SymbolInfo + " new build\n"},
		{"muted", func(w *bytes.Buffer) { PrintMuted(w, "detail") }, "detail\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.print(&buf)
			if buf.String() != tt.want {
				t.Errorf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestPrintField(t *testing.T) {
	DisableColor()

	var buf bytes.Buffer
	PrintField(&buf, "Device", "hammerhead")
	if !strings.Contains(buf.String(), "Device") || !strings.Contains(buf.String(), "hammerhead") {
		t.Errorf("got %q", buf.String())
	}

	buf.Reset()
	PrintField(&buf, "Remote", "")
	if !strings.Contains(buf.String(), "(unknown)") {
		t.Errorf("empty value not marked unknown: %q", buf.String())
	}
}
