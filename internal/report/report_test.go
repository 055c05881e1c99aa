package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"dexsimplify/internal/optimizer"
)

func TestPrintQuietEmitsOneLine(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, true, 0)
	w.Print(Summary{
		RunID:       "run-1",
		ClassCount:  2,
		MethodCount: 10,
		Elapsed:     5 * time.Millisecond,
	})
	out := buf.String()
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("expected exactly one line in quiet mode, got %q", out)
	}
	if !strings.Contains(out, "run-1") || !strings.Contains(out, "10") || !strings.Contains(out, "2") {
		t.Fatalf("expected quiet line to include run id and counts, got %q", out)
	}
}

func TestPrintDefaultVerbosityOmitsPerPassAndFingerprints(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, false, 0)
	stats := optimizer.NewStats()
	w.Print(Summary{
		RunID:             "run-2",
		ClassCount:        1,
		MethodCount:       3,
		Stats:             stats,
		InputFingerprint:  "aaaa",
		OutputFingerprint: "bbbb",
		OutPath:           "out.dex",
	})
	out := buf.String()
	if !strings.Contains(out, "Classes analyzed:   1") {
		t.Fatalf("expected class count line, got %q", out)
	}
	if !strings.Contains(out, "Output:             out.dex") {
		t.Fatalf("expected output path line, got %q", out)
	}
	if strings.Contains(out, "Per-pass breakdown:") {
		t.Fatal("expected no per-pass breakdown below --verbose=2")
	}
	if strings.Contains(out, "aaaa") || strings.Contains(out, "bbbb") {
		t.Fatal("expected no fingerprints below --verbose=3")
	}
}

func TestPrintOmitsSkippedLineWhenZero(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, false, 0)
	w.Print(Summary{RunID: "run-3", OutPath: "out.dex"})
	if strings.Contains(buf.String(), "Methods skipped:") {
		t.Fatal("expected no skipped-methods line when SkippedCount is zero")
	}
}

func TestPrintShowsSkippedLineWhenNonzero(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, false, 0)
	w.Print(Summary{RunID: "run-4", OutPath: "out.dex", SkippedCount: 3})
	if !strings.Contains(buf.String(), "Methods skipped:    3") {
		t.Fatalf("expected a skipped-methods line, got %q", buf.String())
	}
}

func TestPrintVerbose2ShowsPerPassBreakdown(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, false, 2)
	stats := optimizer.NewStats()
	w.Print(Summary{RunID: "run-5", OutPath: "out.dex", Stats: stats})
	out := buf.String()
	if !strings.Contains(out, "Per-pass breakdown:") {
		t.Fatal("expected per-pass breakdown at --verbose=2")
	}
	for _, p := range optimizer.Pipeline() {
		if !strings.Contains(out, p.Name()) {
			t.Fatalf("expected pass %q listed in breakdown, got %q", p.Name(), out)
		}
	}
	if strings.Contains(out, "Input fingerprint:") {
		t.Fatal("expected no fingerprints at --verbose=2")
	}
}

func TestPrintVerbose3ShowsFingerprints(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, false, 3)
	w.Print(Summary{
		RunID:             "run-6",
		OutPath:           "out.dex",
		InputFingerprint:  "cafebabe",
		OutputFingerprint: "deadbeef",
	})
	out := buf.String()
	if !strings.Contains(out, "Input fingerprint:  cafebabe") {
		t.Fatalf("expected input fingerprint, got %q", out)
	}
	if !strings.Contains(out, "Output fingerprint: deadbeef") {
		t.Fatalf("expected output fingerprint, got %q", out)
	}
}
