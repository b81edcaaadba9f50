package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/foxseedlab/zumka/internal/session"
)

func TestPrinterPrintResult(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintResult(session.EventFinal, "hello world")
	p.PrintResult(session.EventFinalRefinement, "Hello, world.")
	p.PrintResult("custom", "x")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{
		"[final] hello world",
		"[final_refinement] Hello, world.",
		"[custom] x",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d: %q", len(lines), len(want), buf.String())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestPrinterImplementsSessionPrinter(t *testing.T) {
	var _ session.Printer = NewPrinter(&bytes.Buffer{})
}
